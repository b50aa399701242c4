package runner

import (
	"fmt"
	"strings"
)

type promptKind int

const (
	promptHostKey promptKind = iota
	promptPassphrase
	promptSudo
	promptRemotePassword
)

func (k promptKind) String() string {
	switch k {
	case promptHostKey:
		return "host-key"
	case promptPassphrase:
		return "passphrase"
	case promptSudo:
		return "sudo-password"
	case promptRemotePassword:
		return "remote-password"
	}
	return "unknown"
}

type markerKind int

const (
	markerPrompt markerKind = iota
	markerSuccess
	markerFailure
)

// needle is a lowercase substring watched for in the combined output stream.
// A lineStart needle only matches at the beginning of a line.
type needle struct {
	text      string
	kind      markerKind
	prompt    promptKind
	lineStart bool
}

var tunnelNeedles = []needle{
	{text: "are you sure you want to continue connecting", kind: markerPrompt, prompt: promptHostKey},
	{text: "enter passphrase for key", kind: markerPrompt, prompt: promptPassphrase},
	{text: "[sudo] password for", kind: markerPrompt, prompt: promptSudo},
	{text: "[local sudo] password:", kind: markerPrompt, prompt: promptSudo},
	// macOS sudo
	{text: "password:", kind: markerPrompt, prompt: promptSudo, lineStart: true},

	// ssh password logins on the remote side; the local sudo password must
	// never be sent to these
	{text: "'s password:", kind: markerPrompt, prompt: promptRemotePassword},
	{text: ") password:", kind: markerPrompt, prompt: promptRemotePassword},

	{text: "connected to server", kind: markerSuccess},

	{text: "permission denied", kind: markerFailure},
	{text: "sorry, try again", kind: markerFailure},
	{text: "incorrect password attempts", kind: markerFailure},
	{text: "could not resolve hostname", kind: markerFailure},
	{text: "connection refused", kind: markerFailure},
	{text: "fatal:", kind: markerFailure},
}

var longestNeedle = func() int {
	longest := 0
	for _, n := range tunnelNeedles {
		if len(n.text) > longest {
			longest = len(n.text)
		}
	}
	return longest
}()

type promptState int

const (
	stateAwaitingPrompt promptState = iota
	stateSentSecret
	stateTerminal
)

func (s promptState) String() string {
	switch s {
	case stateAwaitingPrompt:
		return "awaiting-prompt"
	case stateSentSecret:
		return "sent-secret"
	case stateTerminal:
		return "terminal"
	}
	return "unknown"
}

// promptMachine answers interactive prompts seen in a live output stream.
// Feed it output as it arrives; it returns the replies to write back.
type promptMachine struct {
	creds Credentials
	state promptState

	raw   string
	lower string
	// before is the byte preceding lower, '\n' at stream start
	before byte

	answered  []promptKind
	observed  bool
	succeeded bool
	err       error
}

func newPromptMachine(creds Credentials) *promptMachine {
	return &promptMachine{creds: creds, before: '\n'}
}

func (m *promptMachine) State() promptState {
	return m.state
}

func (m *promptMachine) Terminal() bool {
	return m.state == stateTerminal
}

func (m *promptMachine) Succeeded() bool {
	return m.succeeded
}

func (m *promptMachine) Err() error {
	return m.err
}

func (m *promptMachine) Feed(chunk string) []string {
	if m.state == stateTerminal {
		return nil
	}

	m.raw += chunk
	m.lower += asciiLower(chunk)

	var replies []string

	for m.state != stateTerminal {
		idx, n, ok := m.nextNeedle()
		if !ok {
			m.keepTail()
			break
		}

		m.observed = true

		switch n.kind {
		case markerPrompt:
			reply, err := m.replyFor(n.prompt)
			if err != nil {
				m.fail(err)
				break
			}
			m.answered = append(m.answered, n.prompt)
			m.state = stateSentSecret
			replies = append(replies, reply+"\n")
		case markerSuccess:
			m.state = stateTerminal
			m.succeeded = true
		case markerFailure:
			m.fail(fmt.Errorf("%w: %s", ErrTunnelFailed, lineAround(m.raw, idx)))
		}

		end := idx + len(n.text)
		m.before = m.lower[end-1]
		m.raw = m.raw[end:]
		m.lower = m.lower[end:]
	}

	return replies
}

// TimeoutErr is the terminal error when the deadline passes first.
func (m *promptMachine) TimeoutErr(timeoutMs int) error {
	m.state = stateTerminal

	if !m.observed {
		m.err = fmt.Errorf("%w after %dms: %w", ErrTimeout, timeoutMs, ErrPromptNotObserved)
	} else {
		m.err = fmt.Errorf("%w after %dms", ErrTimeout, timeoutMs)
	}

	return m.err
}

func (m *promptMachine) fail(err error) {
	m.state = stateTerminal
	m.err = err
}

func (m *promptMachine) replyFor(kind promptKind) (string, error) {
	switch kind {
	case promptHostKey:
		return "yes", nil
	case promptPassphrase:
		if m.creds.SSHPassphrase == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingCredential, kind)
		}
		return m.creds.SSHPassphrase, nil
	case promptSudo:
		if m.creds.SudoPassword == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingCredential, kind)
		}
		return m.creds.SudoPassword, nil
	case promptRemotePassword:
		return "", fmt.Errorf("%w: %s (password logins are not answered)", ErrMissingCredential, kind)
	}
	return "", fmt.Errorf("%w: %s", ErrMissingCredential, kind)
}

func (m *promptMachine) nextNeedle() (int, needle, bool) {
	best := -1
	var found needle

	for _, n := range tunnelNeedles {
		idx := m.indexOf(n)
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best {
			best = idx
			found = n
		}
	}

	return best, found, best >= 0
}

func (m *promptMachine) indexOf(n needle) int {
	if !n.lineStart {
		return strings.Index(m.lower, n.text)
	}

	from := 0
	for {
		idx := strings.Index(m.lower[from:], n.text)
		if idx < 0 {
			return -1
		}
		idx += from

		prev := m.before
		if idx > 0 {
			prev = m.lower[idx-1]
		}
		if prev == '\n' || prev == '\r' {
			return idx
		}

		from = idx + 1
	}
}

// keepTail drops scanned output, keeping enough to match a needle split
// across chunks.
func (m *promptMachine) keepTail() {
	keep := longestNeedle - 1
	if len(m.lower) <= keep {
		return
	}
	cut := len(m.lower) - keep
	m.before = m.lower[cut-1]
	m.raw = m.raw[cut:]
	m.lower = m.lower[cut:]
}

func lineAround(s string, idx int) string {
	start := strings.LastIndexByte(s[:idx], '\n') + 1
	end := strings.IndexByte(s[idx:], '\n')
	if end < 0 {
		end = len(s)
	} else {
		end += idx
	}
	return strings.TrimSpace(s[start:end])
}

// asciiLower lowercases A-Z only, so byte offsets match the input.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
