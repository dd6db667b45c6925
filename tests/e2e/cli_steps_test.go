package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// cliContext holds binary and relay state for a single scenario
type cliContext struct {
	tmpDir   string
	exitCode int
	output   string

	relay     *exec.Cmd
	relayLog  bytes.Buffer
	relayBase string

	status int
	body   string
}

func (tc *cliContext) register(sc *godog.ScenarioContext) {
	sc.Step(`^preocupacional is built$`, tc.isBuilt)
	sc.Step(`^I run preocupacional with "([^"]*)"$`, tc.iRunWith)
	sc.Step(`^the exit code should be (\d+)$`, tc.theExitCodeShouldBe)
	sc.Step(`^the output should contain "([^"]*)"$`, tc.theOutputShouldContain)
	sc.Step(`^"([^"]*)" should contain (\d+) PDF files$`, tc.shouldContainPDFFiles)
	sc.Step(`^"([^"]*)" should exist$`, tc.shouldExist)

	sc.Step(`^the relay is running$`, tc.theRelayIsRunning)
	sc.Step(`^I GET "([^"]*)"$`, tc.iGET)
	sc.Step(`^I POST the file "([^"]*)" to "([^"]*)"$`, tc.iPOSTFile)
	sc.Step(`^I POST to "([^"]*)":$`, tc.iPOST)
	sc.Step(`^the response status should be (\d+)$`, tc.theResponseStatusShouldBe)
	sc.Step(`^the response body should contain "([^"]*)"$`, tc.theResponseBodyShouldContain)
	sc.Step(`^the relay should report success with a message id$`, tc.theRelayShouldReportSuccess)
}

func (tc *cliContext) expand(s string) string {
	return strings.ReplaceAll(s, "{tmpdir}", tc.tmpDir)
}

func (tc *cliContext) isBuilt() error {
	if binaryPath == "" {
		return fmt.Errorf("binary not built")
	}
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		return fmt.Errorf("binary does not exist at %s", binaryPath)
	}
	return nil
}

func (tc *cliContext) iRunWith(args string) error {
	cmd := exec.Command(binaryPath, splitArgs(tc.expand(args))...)
	cmd.Dir = tc.tmpDir
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	tc.output = output.String()

	if exitErr, ok := err.(*exec.ExitError); ok {
		tc.exitCode = exitErr.ExitCode()
	} else if err != nil {
		return fmt.Errorf("failed to run command: %w", err)
	} else {
		tc.exitCode = 0
	}
	return nil
}

func (tc *cliContext) theExitCodeShouldBe(expected int) error {
	if tc.exitCode != expected {
		return fmt.Errorf("expected exit code %d, got %d\nOutput:\n%s", expected, tc.exitCode, tc.output)
	}
	return nil
}

func (tc *cliContext) theOutputShouldContain(expected string) error {
	if !strings.Contains(tc.output, expected) {
		return fmt.Errorf("output does not contain %q\nOutput:\n%s", expected, tc.output)
	}
	return nil
}

func (tc *cliContext) shouldContainPDFFiles(path string, count int) error {
	files, err := filepath.Glob(filepath.Join(tc.expand(path), "*.pdf"))
	if err != nil {
		return err
	}
	if len(files) != count {
		return fmt.Errorf("expected %d PDF files, found %d", count, len(files))
	}
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		if !bytes.HasPrefix(b, []byte("%PDF-")) {
			return fmt.Errorf("%s is not a PDF", f)
		}
	}
	return nil
}

func (tc *cliContext) shouldExist(path string) error {
	if _, err := os.Stat(tc.expand(path)); os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	return nil
}

func freeAddr() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	return l.Addr().String(), nil
}

func (tc *cliContext) theRelayIsRunning() error {
	addr, err := freeAddr()
	if err != nil {
		return err
	}
	cmd := exec.Command(binaryPath, "relay", "--addr", addr)
	cmd.Env = append(os.Environ(),
		"CLINIC_EMAIL=clinica@example.cl",
		"MAIL_BACKEND=log",
		"LOG_FORMAT=json",
	)
	cmd.Stdout = &tc.relayLog
	cmd.Stderr = &tc.relayLog
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting relay: %w", err)
	}
	tc.relay = cmd
	tc.relayBase = "http://" + addr

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(tc.relayBase + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("relay did not become healthy\n%s", tc.relayLog.String())
}

func (tc *cliContext) stopRelay() {
	if tc.relay == nil || tc.relay.Process == nil {
		return
	}
	_ = tc.relay.Process.Signal(os.Interrupt)
	done := make(chan struct{})
	go func() {
		_ = tc.relay.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		_ = tc.relay.Process.Kill()
	}
	tc.relay = nil
}

func (tc *cliContext) do(method, path string, body io.Reader) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, tc.relayBase+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.status = resp.StatusCode
	tc.body = string(b)
	return nil
}

func (tc *cliContext) iGET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *cliContext) iPOSTFile(file, path string) error {
	b, err := os.ReadFile(tc.expand(file))
	if err != nil {
		return err
	}
	return tc.do(http.MethodPost, path, bytes.NewReader(b))
}

func (tc *cliContext) iPOST(path string, body *godog.DocString) error {
	return tc.do(http.MethodPost, path, strings.NewReader(body.Content))
}

func (tc *cliContext) theResponseStatusShouldBe(expected int) error {
	if tc.status != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, tc.status, tc.body)
	}
	return nil
}

func (tc *cliContext) theResponseBodyShouldContain(expected string) error {
	if !strings.Contains(tc.body, expected) {
		return fmt.Errorf("body does not contain %q: %s", expected, tc.body)
	}
	return nil
}

func (tc *cliContext) theRelayShouldReportSuccess() error {
	var resp struct {
		Success   bool   `json:"success"`
		MessageID string `json:"messageId"`
	}
	if err := json.Unmarshal([]byte(tc.body), &resp); err != nil {
		return fmt.Errorf("decoding %q: %w", tc.body, err)
	}
	if !resp.Success || resp.MessageID == "" {
		return fmt.Errorf("expected success with a message id, got %s", tc.body)
	}
	return nil
}

// splitArgs splits a command line string into arguments
func splitArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false

	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ' ' && !inQuote:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}
