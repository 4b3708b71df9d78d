package service

import (
	"log/slog"
	"strings"
)

// desktopClientMarker identifies the first-party desktop application, which
// sends a custom user agent like "AccountsDesktop/3.2.1 (Windows NT 10.0)".
const desktopClientMarker = "AccountsDesktop"

const (
	unknownClient = "Unknown Client"
	unknownOS     = "Unknown OS"
)

// deviceService implements DeviceService with a small substring matcher.
// Full user-agent parsing libraries carry large rule databases for bot and
// device detection we do not need; browser and OS family are enough here.
type deviceService struct {
	logger *slog.Logger
}

// DescribeDevice parses the stored user agent into "{browser} on {os}".
// It never fails: unparseable input degrades to the unknown placeholders.
func (d *deviceService) DescribeDevice(userAgent string) string {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return unknownClient + " on " + unknownOS
	}

	client := d.matchClient(userAgent)
	os := d.matchOS(userAgent)

	if client == unknownClient && os == unknownOS {
		d.logger.Debug("unrecognized user agent", slog.String("user_agent", userAgent))
	}

	return client + " on " + os
}

func (d *deviceService) matchClient(userAgent string) string {
	if idx := strings.Index(userAgent, desktopClientMarker); idx >= 0 {
		// "AccountsDesktop/3.2.1" -> "Desktop Client 3.2.1"
		rest := userAgent[idx+len(desktopClientMarker):]
		if strings.HasPrefix(rest, "/") {
			version, _, _ := strings.Cut(rest[1:], " ")
			if version != "" {
				return "Desktop Client " + version
			}
		}
		return "Desktop Client"
	}

	// Order matters: Chrome UAs contain "Safari", Edge UAs contain "Chrome".
	switch {
	case strings.Contains(userAgent, "Edg/"), strings.Contains(userAgent, "Edge/"):
		return "Microsoft Edge"
	case strings.Contains(userAgent, "OPR/"), strings.Contains(userAgent, "Opera"):
		return "Opera"
	case strings.Contains(userAgent, "Chrome/"):
		return "Chrome"
	case strings.Contains(userAgent, "Firefox/"):
		return "Firefox"
	case strings.Contains(userAgent, "Safari/"):
		return "Safari"
	default:
		return unknownClient
	}
}

func (d *deviceService) matchOS(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Windows"):
		return "Windows"
	case strings.Contains(userAgent, "Android"):
		return "Android"
	case strings.Contains(userAgent, "iPhone"), strings.Contains(userAgent, "iPad"), strings.Contains(userAgent, "iOS"):
		return "iOS"
	case strings.Contains(userAgent, "Mac OS X"), strings.Contains(userAgent, "Macintosh"):
		return "macOS"
	case strings.Contains(userAgent, "Linux"):
		return "Linux"
	default:
		return unknownOS
	}
}

// NewDeviceService creates a DeviceService.
func NewDeviceService(logger *slog.Logger) DeviceService {
	return &deviceService{logger: logger}
}
