package screens

import (
	"os"
	"strings"
	"time"

	"github.com/almanova/preocupacional/cmd/preocupacional/wizard/components"
	"github.com/almanova/preocupacional/internal/form"
	"github.com/almanova/preocupacional/internal/signature"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Signature canvas size, matching the PDF embedding aspect ratio.
const (
	SignatureWidth  = 640
	SignatureHeight = 320
)

// SignatureScreen imports the patient's signature from a PNG file
type SignatureScreen struct {
	sectionBase
	data    form.Signature
	path    string
	loaded  string
	loadErr error
	now     func() time.Time
}

// NewSignatureScreen creates the signature step prefilled with data
func NewSignatureScreen(data form.Signature, now func() time.Time) *SignatureScreen {
	if now == nil {
		now = time.Now
	}
	s := &SignatureScreen{
		sectionBase: newSectionBase(form.StepSignature, "FIRMA", "Paso 5 de 5"),
		data:        data,
		now:         now,
	}
	s.validate = func() error { return s.data.Validate() }
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Archivo PNG con su firma").
				Placeholder("/ruta/a/firma.png").
				Value(&s.path),
		),
	).WithShowHelp(false)
	return s
}

// Update implements tea.Model
func (s *SignatureScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := s.update(msg)
	s.load()
	return s, cmd
}

// load imports the file once per distinct path.
func (s *SignatureScreen) load() {
	path := strings.TrimSpace(s.path)
	if path == "" || path == s.loaded {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	s.loaded = path
	dataURL, err := signature.FromFile(path, SignatureWidth, SignatureHeight)
	if err != nil {
		s.loadErr = err
		return
	}
	s.loadErr = nil
	s.data = form.Signature{Base64: dataURL, Timestamp: s.now().UnixMilli()}
}

// View implements tea.Model
func (s *SignatureScreen) View() string {
	status := components.HintStyle.Render("Sin firma cargada")
	switch {
	case s.loadErr != nil:
		status = components.ErrorStyle.Render("No se pudo leer la firma: " + s.loadErr.Error())
	case s.data.Base64 != "":
		status = components.SuccessStyle.Render("✓ Firma cargada")
	}
	return lipgloss.JoinVertical(lipgloss.Left, s.view(), "", status)
}

// Payload returns a copy of the bound section
func (s *SignatureScreen) Payload() any { return s.data }
