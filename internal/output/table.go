package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/blackwell-systems/chocobridge/internal/choco"
	"github.com/blackwell-systems/chocobridge/internal/feedstore"
)

// RenderPackageTable renders a table of packages with their details.
func RenderPackageTable(packages []choco.Package) string {
	if len(packages) == 0 {
		return "No packages found.\n"
	}

	sorted := make([]choco.Package, len(packages))
	copy(sorted, packages)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Version < sorted[j].Version
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-28s %-14s %-10s %s\n", "NAME", "VERSION", "SIZE", "SUMMARY"))
	sb.WriteString(strings.Repeat("-", 70) + "\n")

	for _, pkg := range sorted {
		size := "-"
		if pkg.SizeBytes > 0 {
			size = humanize.Bytes(uint64(pkg.SizeBytes))
		}
		summary := pkg.Summary
		if len(summary) > 40 {
			summary = summary[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("%-28s %-14s %-10s %s\n", pkg.Name, pkg.Version, size, summary))
	}

	sb.WriteString(fmt.Sprintf("\n%d package(s)\n", len(sorted)))
	return sb.String()
}

// RenderSourceTable renders a table of registered package sources.
func RenderSourceTable(sources []*feedstore.Source) string {
	if len(sources) == 0 {
		return "No sources registered.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s %-44s %-8s %s\n", "NAME", "LOCATION", "TRUSTED", "REGISTERED"))
	sb.WriteString(strings.Repeat("-", 84) + "\n")

	for _, src := range sources {
		trusted := "no"
		if src.Trusted {
			trusted = "yes"
		}
		sb.WriteString(fmt.Sprintf("%-20s %-44s %-8s %s\n",
			src.Name, src.Location, trusted, humanize.Time(src.RegisteredAt)))
	}
	return sb.String()
}
