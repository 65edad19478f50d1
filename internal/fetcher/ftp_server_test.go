package fetcher

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// ftpServer serves ledger files over just enough FTP for jlaffaye/ftp.
// The first busy RETR commands are refused with 450.
type ftpServer struct {
	listener net.Listener
	files    map[string]string
	busy     int
	logins   []string

	wg sync.WaitGroup
	mu sync.Mutex
}

func newFTPServer(t *testing.T, files map[string]string, busy int) *ftpServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &ftpServer{listener: ln, files: files, busy: busy}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(s.close)
	return s
}

func (s *ftpServer) url(path string) string {
	return "ftp://" + s.listener.Addr().String() + path
}

func (s *ftpServer) takeBusy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy > 0 {
		s.busy--
		return true
	}
	return false
}

func (s *ftpServer) users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.logins...)
}

func (s *ftpServer) close() {
	s.listener.Close() //nolint:errcheck
	s.wg.Wait()
}

func (s *ftpServer) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *ftpServer) handle(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close() //nolint:errcheck

	conn.SetDeadline(time.Now().Add(10 * time.Second)) //nolint:errcheck

	writer := bufio.NewWriter(conn)
	reader := bufio.NewReader(conn)

	reply := func(format string, args ...any) {
		fmt.Fprintf(writer, format+"\r\n", args...) //nolint:errcheck
		writer.Flush()                              //nolint:errcheck
	}

	reply("220 ledger ftp ready")

	var dataListener net.Listener

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		parts := strings.SplitN(line, " ", 2)
		cmd := strings.ToUpper(parts[0])
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "USER":
			s.mu.Lock()
			s.logins = append(s.logins, arg)
			s.mu.Unlock()
			reply("331 Password required")
		case "PASS":
			reply("230 User logged in")
		case "FEAT":
			fmt.Fprintf(writer, "211-Features:\r\n UTF8\r\n") //nolint:errcheck
			reply("211 End")
		case "TYPE", "OPTS":
			reply("200 OK")
		case "EPSV", "PASV":
			var err error
			dataListener, err = net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				reply("425 Can't open data connection")
				continue
			}
			port := dataListener.Addr().(*net.TCPAddr).Port
			if cmd == "EPSV" {
				reply("229 Entering Extended Passive Mode (|||%d|)", port)
			} else {
				reply("227 Entering Passive Mode (127,0,0,1,%d,%d)", port/256, port%256)
			}
		case "RETR":
			if dataListener == nil {
				reply("425 Use PASV first")
				continue
			}
			content, ok := s.files[arg]
			switch {
			case !ok:
				reply("550 File not found")
			case s.takeBusy():
				reply("450 File busy")
			default:
				reply("150 Opening data connection")
				dataConn, err := dataListener.Accept()
				if err != nil {
					reply("425 Can't open data connection")
					continue
				}
				io.WriteString(dataConn, content) //nolint:errcheck
				dataConn.Close()                  //nolint:errcheck
				reply("226 Transfer complete")
			}
			dataListener.Close() //nolint:errcheck
			dataListener = nil
		case "QUIT":
			reply("221 Goodbye")
			return
		default:
			reply("502 Command not implemented")
		}
	}
}
