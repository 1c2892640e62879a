package overlay

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// mountEntry is the subset of a /proc/self/mountinfo line this package
// needs: where it's mounted, what kind of filesystem it is, and (for
// overlay mounts) the super options string carrying lowerdir/upperdir/workdir.
type mountEntry struct {
	mountPoint   string
	fsType       string
	superOptions string
}

// overlayOpt extracts the value of a comma-separated key=value pair from an
// overlay super-options string, e.g. "lowerdir=/a:/b,upperdir=/c".
func overlayOpt(superOptions, key string) (string, bool) {
	for _, part := range strings.Split(superOptions, ",") {
		if v, ok := strings.CutPrefix(part, key+"="); ok {
			return v, true
		}
	}
	return "", false
}

// matchesLayers reports whether this overlay mount entry was composed from
// exactly the given layers.
func (e mountEntry) matchesLayers(layers Layers) bool {
	lower, ok := overlayOpt(e.superOptions, "lowerdir")
	if !ok || lower != layers.Lower {
		return false
	}
	upper, ok := overlayOpt(e.superOptions, "upperdir")
	if !ok || upper != layers.Upper {
		return false
	}
	work, ok := overlayOpt(e.superOptions, "workdir")
	if !ok || work != layers.Work {
		return false
	}
	return true
}

// mountInfoPath is the file findMount reads; overridable in tests.
var mountInfoPath = "/proc/self/mountinfo"

// findMount scans /proc/self/mountinfo for the mount entry at target,
// returning nil if nothing is mounted there. Mount point fields in
// mountinfo are octal-escaped for whitespace and backslashes (man 5
// proc_pid_mountinfo); unescapeOctal reverses that.
func findMount(target string) (*mountEntry, error) {
	f, err := os.Open(mountInfoPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var found *mountEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		sepIdx := -1
		for i, f := range fields {
			if f == "-" {
				sepIdx = i
				break
			}
		}
		// mountID parentID major:minor root mountPoint options... - fsType source superOptions
		if sepIdx < 5 || sepIdx+3 >= len(fields) {
			continue
		}
		mountPoint := unescapeOctal(fields[4])
		if mountPoint != target {
			continue
		}
		found = &mountEntry{
			mountPoint:   mountPoint,
			fsType:       fields[sepIdx+1],
			superOptions: fields[sepIdx+3],
		}
		// Keep scanning: a later line (more recently mounted) shadows an
		// earlier one at the same path, matching kernel mount-stacking order.
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return found, nil
}

// unescapeOctal reverses the \NNN octal escaping mountinfo applies to
// spaces, tabs, newlines, and backslashes in path fields.
func unescapeOctal(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if n, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
