package installer

import (
	"strconv"
	"strings"
)

// CompareVersions orders two dotted version strings numerically. A leading
// "v" and any pre-release or build suffix ("-beta", "+42") are ignored, as
// are components that are not numbers. Missing components count as zero, so
// "1.2" equals "1.2.0".
func CompareVersions(a, b string) int {
	pa, pb := versionParts(a), versionParts(b)
	for i := 0; i < max(len(pa), len(pb)); i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

func versionParts(v string) []int {
	v = strings.TrimLeft(strings.TrimSpace(v), "vV")
	var parts []int
	for _, field := range strings.Split(v, ".") {
		if i := strings.IndexAny(field, "-+_ "); i >= 0 {
			field = field[:i]
		}
		if n, err := strconv.Atoi(field); err == nil {
			parts = append(parts, n)
		}
	}
	return parts
}

// InstallAction describes how a run relates to an existing installation.
type InstallAction int

const (
	ActionFreshInstall InstallAction = iota
	ActionUpgrade
	ActionDowngrade
	ActionReinstall
)

var actionNames = [...]string{
	ActionFreshInstall: "FreshInstall",
	ActionUpgrade:      "Upgrade",
	ActionDowngrade:    "Downgrade",
	ActionReinstall:    "Reinstall",
}

func (a InstallAction) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "InstallAction(" + strconv.Itoa(int(a)) + ")"
	}
	return actionNames[a]
}

// DetermineAction compares the installed version with the one being
// installed. An empty installedVersion means nothing is installed.
func DetermineAction(installedVersion, newVersion string) InstallAction {
	if installedVersion == "" {
		return ActionFreshInstall
	}
	switch c := CompareVersions(newVersion, installedVersion); {
	case c > 0:
		return ActionUpgrade
	case c < 0:
		return ActionDowngrade
	default:
		return ActionReinstall
	}
}
