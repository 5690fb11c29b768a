package prompt

import (
	"os"
	"os/user"
	"strings"
)

const Default = ": "

// Render expands \u, \h, \w and \$ in format.
func Render(format string) string {
	if !strings.Contains(format, `\`) {
		return format
	}

	userName, hostName, cwd, sign := "username", "hostname", "~", "$"
	homeDir, ok := os.LookupEnv("HOME")

	if curUser, err := user.Current(); err == nil {
		userName = curUser.Username
		if curUser.Uid == "0" {
			sign = "#"
		}
	}

	if curHostName, err := os.Hostname(); err == nil {
		hostName = curHostName
	}

	if curCwd, err := os.Getwd(); err == nil {
		cwd = curCwd
		if ok && homeDir != "" && strings.HasPrefix(curCwd, homeDir) {
			cwd = strings.Replace(curCwd, homeDir, "~", 1)
		}
	}

	return strings.NewReplacer(
		`\u`, userName,
		`\h`, hostName,
		`\w`, cwd,
		`\$`, sign,
	).Replace(format)
}
