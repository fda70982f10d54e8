// Package sysinfo reports host name, CPU brand and total memory.
package sysinfo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

const unknown = "Unknown"

// Info is a snapshot of the machine the shell runs on. Empty strings and a
// zero TotalMemory mean the value could not be determined.
type Info struct {
	Host        string
	CPU         string
	TotalMemory uint64 // bytes
}

// Provider gathers system information.
type Provider interface {
	Info(ctx context.Context) (Info, error)
}

// Host is the default Provider backed by gopsutil.
type Host struct{}

// Info collects whatever is available. Partial results are returned together
// with the joined errors of the queries that failed.
func (Host) Info(ctx context.Context) (Info, error) {
	var info Info
	var errs []error

	if h, err := host.InfoWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("host: %w", err))
	} else {
		info.Host = h.Hostname
	}

	if cpus, err := cpu.InfoWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("cpu: %w", err))
	} else if len(cpus) > 0 {
		info.CPU = strings.TrimSpace(cpus[0].ModelName)
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("memory: %w", err))
	} else {
		info.TotalMemory = vm.Total
	}

	return info, errors.Join(errs...)
}

// Write prints the system info block.
func Write(w io.Writer, info Info) {
	fmt.Fprintln(w, "🦆 DuckShell System Info")
	fmt.Fprintf(w, "Host: %s\n", orUnknown(info.Host))
	fmt.Fprintf(w, "CPU: %s\n", orUnknown(info.CPU))
	if info.TotalMemory == 0 {
		fmt.Fprintf(w, "RAM: %s\n", unknown)
		return
	}
	fmt.Fprintf(w, "RAM: %d MB (%s)\n", info.TotalMemory/(1024*1024), humanize.IBytes(info.TotalMemory))
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
