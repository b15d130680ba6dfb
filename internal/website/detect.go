package website

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"
)

// commonPorts are the dev-server ports probed, in order, when the start
// command does not name one explicitly.
var commonPorts = []int{3000, 3001, 5173, 8080, 8000, 4200, 5000}

var portPatterns = []*regexp.Regexp{
	regexp.MustCompile(`--port[= ](\d{2,5})`),
	regexp.MustCompile(`-p[= ](\d{2,5})`),
	regexp.MustCompile(`PORT=(\d{2,5})`),
	regexp.MustCompile(`localhost:(\d{2,5})`),
}

// PortFromCommand extracts an explicit port from a dev-server start command.
// Returns 0 when the command names none.
func PortFromCommand(cmd string) int {
	for _, re := range portPatterns {
		if m := re.FindStringSubmatch(cmd); m != nil {
			if port, err := strconv.Atoi(m[1]); err == nil && port > 0 && port < 65536 {
				return port
			}
		}
	}
	return 0
}

// DetectServerURL finds a locally running development server. The start
// command (if any) is consulted first for an explicit port; otherwise the
// common dev-server ports are probed. Returns "" when nothing is listening.
func DetectServerURL(startCommand string) string {
	if port := PortFromCommand(startCommand); port != 0 {
		if portOpen(port) {
			return fmt.Sprintf("http://localhost:%d", port)
		}
		return ""
	}
	for _, port := range commonPorts {
		if portOpen(port) {
			return fmt.Sprintf("http://localhost:%d", port)
		}
	}
	return ""
}

func portOpen(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", port), 500*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
