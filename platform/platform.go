// Package platform describes the host and target machines and keeps the
// few OS-conditional behaviors out of step definitions.
package platform

import (
	"runtime"
	"strings"
)

// Host identifies an operating system and processor architecture, using
// GOOS/GOARCH naming.
type Host struct {
	OS   string
	Arch string
}

// Current returns the Host describing the executing machine.
func Current() Host {
	return Host{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

func (h Host) IsWindows() bool { return h.OS == "windows" }

// String returns the "os/arch" form.
func (h Host) String() string { return h.OS + "/" + h.Arch }

// Policy resolves platform-conditional details (executable suffixes,
// privilege elevation) so step definitions stay declarative.
type Policy struct {
	host Host
}

// NewPolicy creates a Policy for the given host.
func NewPolicy(host Host) Policy {
	return Policy{host: host}
}

// ExecutableName appends the platform's executable suffix.
func (p Policy) ExecutableName(base string) string {
	if p.host.IsWindows() {
		return base + ".exe"
	}
	return base
}

// ScriptName appends the platform's script suffix. The depot_tools entry
// points (fetch, gclient) ship as extensionless scripts with .bat
// wrappers on windows.
func (p Policy) ScriptName(base string) string {
	if p.host.IsWindows() {
		return base + ".bat"
	}
	return base
}

// Elevate rewrites a program invocation so it runs with administrator
// privileges: sudo on unix, a RunAs powershell wrapper on windows.
func (p Policy) Elevate(program string, args []string) (string, []string) {
	if p.host.IsWindows() {
		psArgs := []string{"-NoProfile", "-Command", "Start-Process", "-Wait", "-Verb", "RunAs", "-FilePath", program}
		if len(args) > 0 {
			// Each element is single-quoted so spaces and commas
			// survive PowerShell's -ArgumentList parsing.
			quoted := make([]string, len(args))
			for i, arg := range args {
				quoted[i] = "'" + strings.ReplaceAll(arg, "'", "''") + "'"
			}
			psArgs = append(psArgs, "-ArgumentList", strings.Join(quoted, ","))
		}
		return "powershell", psArgs
	}
	return "sudo", append([]string{"--", program}, args...)
}
