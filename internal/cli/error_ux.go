package cli

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aalvaropc/stockyard/internal/domain"
)

var reLine = regexp.MustCompile(`(?i)\bline\s+(\d+)\b`)

// userMessage turns an error into a one-line message for the shell.
func userMessage(err error) string {
	if err == nil {
		return ""
	}

	var oe *domain.OpError
	if errors.As(err, &oe) {
		switch oe.Kind {
		case domain.KindInvalidArgument:
			return strings.TrimSuffix(oe.Err.Error(), ": "+domain.ErrInvalidArgument.Error())

		case domain.KindIO:
			msg := strings.TrimPrefix(oe.Err.Error(), domain.ErrIO.Error()+": ")
			if oe.Path != "" && !strings.Contains(msg, oe.Path) {
				return "cannot access " + oe.Path + ": " + msg
			}
			return msg

		case domain.KindNotFound:
			if strings.Contains(oe.Op, "workspacefinder") {
				return "Workspace not found (tip: run `stockyard init`)"
			}
			return "Not found"

		case domain.KindInvalidConfig:
			base := "config"
			if strings.TrimSpace(oe.Path) != "" {
				base = filepath.Base(oe.Path)
			}
			if m := reLine.FindStringSubmatch(err.Error()); len(m) == 2 {
				return "Invalid YAML at " + base + " line " + m[1]
			}
			return "Invalid config at " + base + ": " + oe.Err.Error()
		}
	}

	return err.Error()
}
