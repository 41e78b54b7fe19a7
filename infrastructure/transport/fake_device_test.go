package transport

import (
	"bufio"
	"io"
	"strings"
	"sync"
	"time"
)

// fakeDevice speaks just enough of the IOS CLI to drive a session
type fakeDevice struct {
	hostname       string
	username       string
	password       string
	enablePassword string
	// interactiveLogin runs the Username/Password dialogue before the prompt
	interactiveLogin bool
	responses        map[string]string
	hang             map[string]bool
	// delay holds back the answer to a command
	delay map[string]time.Duration

	mu       sync.Mutex
	commands []string
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		hostname:       "core-sw",
		username:       "admin",
		password:       "secret",
		enablePassword: "enable-secret",
		responses: map[string]string{
			"show running-config | include ^hostname": "hostname core-sw",
			"show interface Gi1/0/1":                  "GigabitEthernet1/0/1 is up, line protocol is up (connected)\r\n  Hardware is Gigabit Ethernet",
			"ping 10.0.0.254":                         "Type escape sequence to abort.\r\nSending 5, 100-byte ICMP Echos to 10.0.0.254, timeout is 2 seconds:\r\n!!!!!\r\nSuccess rate is 100 percent (5/5), round-trip min/avg/max = 1/1/2 ms",
		},
		hang:  map[string]bool{},
		delay: map[string]time.Duration{},
	}
}

func (f *fakeDevice) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commands))
	copy(out, f.commands)
	return out
}

func (f *fakeDevice) record(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, line)
}

func (f *fakeDevice) serve(rw io.ReadWriter) {
	r := bufio.NewReader(rw)
	readLine := func() (string, bool) {
		line, err := r.ReadString('\n')
		if err != nil {
			return "", false
		}
		return strings.TrimRight(line, "\r\n"), true
	}
	write := func(s string) bool {
		_, err := io.WriteString(rw, s)
		return err == nil
	}

	if f.interactiveLogin {
		for {
			if !write("\r\nUser Access Verification\r\n\r\nUsername: ") {
				return
			}
			user, ok := readLine()
			if !ok {
				return
			}
			if !write("Password: ") {
				return
			}
			pass, ok := readLine()
			if !ok {
				return
			}
			if user == f.username && pass == f.password {
				break
			}
			if !write("\r\n% Login invalid\r\n") {
				return
			}
		}
	}

	mode := ">"
	if f.enablePassword == "" {
		mode = "#"
	}
	if !write("\r\n" + f.hostname + mode) {
		return
	}

	for {
		line, ok := readLine()
		if !ok {
			return
		}
		f.record(line)

		switch {
		case line == "enable":
			if !write(line + "\r\nPassword: ") {
				return
			}
			pw, ok := readLine()
			if !ok {
				return
			}
			if pw == f.enablePassword {
				mode = "#"
				write("\r\n" + f.hostname + mode)
			} else {
				write("\r\n% Access denied\r\n\r\n" + f.hostname + mode)
			}
		case f.hang[line]:
			continue
		default:
			if d, ok := f.delay[line]; ok {
				time.Sleep(d)
			}
			out := f.responses[line]
			if out != "" {
				out += "\r\n"
			}
			if !write(line + "\r\n" + out + f.hostname + mode) {
				return
			}
		}
	}
}
