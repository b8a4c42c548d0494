package root

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/avivsinai/rustlator/cmd/rl/root.version=..."
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func buildVersion() string {
	info := map[string]string{
		"version": version,
		"commit":  commit,
		"date":    date,
	}
	if info["commit"] == "" || info["date"] == "" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
			if v := bi.Main.Version; v != "" && v != "(devel)" {
				info["version"] = v
			}
			for _, setting := range bi.Settings {
				switch setting.Key {
				case "vcs.revision":
					if info["commit"] == "" {
						info["commit"] = setting.Value
					}
				case "vcs.time":
					if info["date"] == "" {
						info["date"] = setting.Value
					}
				}
			}
		}
	}

	out := info["version"]
	if info["commit"] != "" {
		out += fmt.Sprintf(" (%s)", shortCommit(info["commit"]))
	}
	if info["date"] != "" {
		out += fmt.Sprintf(" built %s", info["date"])
	}
	return out
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}
