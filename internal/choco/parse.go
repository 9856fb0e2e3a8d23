package choco

import (
	"strconv"
	"strings"
)

// progressPrefix marks engine progress lines, e.g.
// "Progress: Downloading git 2.44.0... 45%".
const progressPrefix = "Progress: "

// parseProgressLine converts one engine output line into a ProgressEvent.
// Returns false for lines that are not progress reports.
func parseProgressLine(line string) (ProgressEvent, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, progressPrefix) {
		return ProgressEvent{}, false
	}
	rest := strings.TrimPrefix(line, progressPrefix)

	// Trailing "... NN%" carries the percentage.
	percent := -1
	if idx := strings.LastIndex(rest, "..."); idx >= 0 {
		tail := strings.TrimSuffix(strings.TrimSpace(rest[idx+3:]), "%")
		if n, err := strconv.Atoi(tail); err == nil {
			percent = n
			rest = strings.TrimSpace(rest[:idx])
		}
	}
	if percent < 0 {
		return ProgressEvent{}, false
	}

	action := rest
	message := ""
	if idx := strings.IndexByte(rest, ' '); idx >= 0 {
		action = rest[:idx]
		message = strings.TrimSpace(rest[idx+1:])
	}

	return ProgressEvent{Action: action, Percent: percent, Message: message}, true
}

// parsePackageList parses the engine's limit-output package listing, one
// "name|version" (optionally "name|version|summary") record per line.
// Summary lines produced by --verbose listings keep the pipe-free summary
// text in the third field.
func parsePackageList(out string, installed bool) []Package {
	var pkgs []Package
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) < 2 {
			continue
		}
		pkg := Package{
			Name:      fields[0],
			Version:   fields[1],
			Installed: installed,
		}
		if len(fields) > 2 {
			pkg.Summary = fields[2]
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs
}

// parseSourceList parses the engine's limit-output source listing. Records
// are pipe-delimited: name|location|disabled|user|cert|priority|... with
// trailing fields varying by engine version, so only the leading ones are
// read.
func parseSourceList(out string) []FeedConfiguration {
	var feeds []FeedConfiguration
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) < 2 {
			continue
		}
		feed := FeedConfiguration{
			Name:     fields[0],
			Location: fields[1],
		}
		if len(fields) > 2 {
			feed.Disabled = strings.EqualFold(fields[2], "true")
		}
		if len(fields) > 5 {
			if n, err := strconv.Atoi(fields[5]); err == nil {
				feed.Priority = n
			}
		}
		feeds = append(feeds, feed)
	}
	return feeds
}

// filterVersionRange drops packages outside the filter's min/max bounds.
// The engine has no native range search; bounds are applied here to the
// collected results.
func filterVersionRange(pkgs []Package, filter SearchFilter) []Package {
	if filter.MinimumVersion == "" && filter.MaximumVersion == "" {
		return pkgs
	}
	kept := pkgs[:0]
	for _, p := range pkgs {
		if filter.MinimumVersion != "" && compareVersions(p.Version, filter.MinimumVersion) < 0 {
			continue
		}
		if filter.MaximumVersion != "" && compareVersions(p.Version, filter.MaximumVersion) > 0 {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// compareVersions compares dotted version strings segment by segment,
// numerically where both segments are numeric and lexically otherwise.
// Prerelease suffixes after "-" are compared as part of their segment.
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		var sa, sb string
		if i < len(as) {
			sa = as[i]
		}
		if i < len(bs) {
			sb = bs[i]
		}
		if sa == "" {
			sa = "0"
		}
		if sb == "" {
			sb = "0"
		}
		if sa == sb {
			continue
		}

		na, errA := strconv.Atoi(sa)
		nb, errB := strconv.Atoi(sb)
		if errA == nil && errB == nil {
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
			continue
		}

		if sa < sb {
			return -1
		}
		return 1
	}
	return 0
}
