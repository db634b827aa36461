// Package setup is the interactive onboarding wizard: create or import the
// device wallet, choose its password and back up the recovery phrase.
package setup

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yolodolo42/ethwallet/internal/ui"
	"github.com/yolodolo42/ethwallet/internal/wallet"
)

// WizardStep represents the current step in the wizard
type WizardStep int

const (
	StepWelcome WizardStep = iota
	StepWalletChoice
	StepSecret
	StepPassword
	StepBackup
	StepComplete
)

const (
	totalSteps = 3 // Wallet, Password, Ready

	// MinPasswordLength is enforced by the wizard and the CLI.
	MinPasswordLength = 8
)

// SetupResult is the outcome of the wizard.
type SetupResult struct {
	Mode          Mode
	WalletAddress string
	Cancelled     bool
}

// WizardModel is the main wizard Bubbletea model
type WizardModel struct {
	step     WizardStep
	status   Status
	accounts Accounts
	quitting bool

	walletSelector ui.Selector
	mode           Mode

	secretInput   textinput.Model
	secretError   string
	passwordInput textinput.Model
	confirmInput  textinput.Model
	passwordStep  int // 0=enter, 1=confirm
	passwordError string
	working       bool

	walletAddress string
	mnemonic      string

	spinner  spinner.Model
	progress progress.Model

	result *SetupResult
}

func walletSelectorItems(hasWallet bool) []ui.SelectorItem {
	items := []ui.SelectorItem{
		{ID: string(ModeCreate), Label: "Create a new wallet", Description: "new 12-word recovery phrase"},
		{ID: string(ModeMnemonic), Label: "Import recovery phrase", Description: "12 or 24 words"},
		{ID: string(ModeKey), Label: "Import private key", Description: "64 hex characters"},
	}
	if hasWallet {
		items = append(items, ui.SelectorItem{ID: string(ModeKeep), Label: "Keep current wallet"})
	}
	return items
}

// NewWizard creates a new wizard model
func NewWizard(accounts Accounts) *WizardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	status := DetectStatus(accounts)
	return &WizardModel{
		step:           StepWelcome,
		status:         status,
		accounts:       accounts,
		walletSelector: ui.NewSelector("Set up wallet", walletSelectorItems(status.HasWallet)),
		secretInput:    ui.NewInput("", 512),
		passwordInput:  ui.NewSecretInput(fmt.Sprintf("Enter password (%d+ chars)", MinPasswordLength), 100),
		confirmInput:   ui.NewSecretInput("Confirm password", 100),
		spinner:        sp,
		progress:       prog,
	}
}

// Init initializes the wizard
func (m WizardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

// Update handles messages
func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Esc is left to the selector and the per-step handlers.
		if msg.Type == tea.KeyCtrlC {
			m.result = &SetupResult{Cancelled: true}
			m.quitting = true
			m.mnemonic = ""
			return m, tea.Quit
		}
		if m.working {
			return m, nil
		}

		switch m.step {
		case StepWelcome:
			if msg.Type == tea.KeyEnter {
				m.step = StepWalletChoice
			}
			return m, nil

		case StepWalletChoice:
			return m.updateWalletChoice(msg)

		case StepSecret:
			if msg.Type == tea.KeyEsc {
				m.resetSecret()
				m.toWalletChoice()
				return m, nil
			}
			if msg.Type == tea.KeyEnter {
				return m.updateSecret()
			}
			// Fall through to let input update happen

		case StepPassword:
			if msg.Type == tea.KeyEsc {
				m.resetPassword()
				if m.mode == ModeCreate {
					m.toWalletChoice()
				} else {
					m.step = StepSecret
					m.secretInput.Focus()
				}
				return m, nil
			}
			if msg.Type == tea.KeyEnter {
				return m.updatePassword()
			}
			// Fall through to let input update happen

		case StepBackup:
			if msg.Type == tea.KeyEnter {
				m.mnemonic = ""
				m.step = StepComplete
			}
			return m, nil

		case StepComplete:
			if msg.Type == tea.KeyEnter {
				m.result = &SetupResult{
					Mode:          m.mode,
					WalletAddress: m.walletAddress,
				}
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.progress.Width = min(40, msg.Width-20)
		m.walletSelector.SetWidth(msg.Width)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case walletDoneMsg:
		m.working = false
		m.resetPassword()
		if msg.err != nil {
			return m.walletFailed(msg.err), nil
		}
		m.resetSecret()
		m.walletAddress = msg.address.Hex()
		if m.mode == ModeCreate {
			m.mnemonic = msg.mnemonic
			m.step = StepBackup
		} else {
			m.step = StepComplete
		}
		return m, nil
	}

	if m.step == StepSecret {
		var cmd tea.Cmd
		m.secretInput, cmd = m.secretInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.step == StepPassword {
		var cmd tea.Cmd
		if m.passwordStep == 0 {
			m.passwordInput, cmd = m.passwordInput.Update(msg)
		} else {
			m.confirmInput, cmd = m.confirmInput.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// walletFailed routes an identity error back to the step that can fix it.
func (m WizardModel) walletFailed(err error) WizardModel {
	msg := wallet.Describe(err)
	switch wallet.KindOf(err) {
	case wallet.KindInvalidKey, wallet.KindInvalidMnemonics:
		m.secretError = msg
		m.step = StepSecret
		m.secretInput.Focus()
	default:
		m.passwordError = msg
		m.step = StepPassword
		m.passwordInput.Focus()
	}
	return m
}

func (m *WizardModel) toWalletChoice() {
	m.step = StepWalletChoice
	m.walletSelector = ui.NewSelector("Set up wallet", walletSelectorItems(m.status.HasWallet))
}

func (m *WizardModel) resetSecret() {
	m.secretInput.Reset()
	m.secretInput.Blur()
	m.secretError = ""
}

func (m *WizardModel) resetPassword() {
	m.passwordStep = 0
	m.passwordError = ""
	m.passwordInput.Reset()
	m.confirmInput.Reset()
	m.confirmInput.Blur()
}

func (m WizardModel) updateWalletChoice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	_, cmd := m.walletSelector.Update(msg)
	if cmd != nil {
		return m, cmd
	}

	if m.walletSelector.Active() {
		return m, nil
	}

	if m.walletSelector.Cancelled() {
		m.step = StepWelcome
		m.walletSelector = ui.NewSelector("Set up wallet", walletSelectorItems(m.status.HasWallet))
		return m, nil
	}

	m.mode = Mode(m.walletSelector.Selected())
	switch m.mode {
	case ModeCreate:
		m.passwordInput.Focus()
		m.step = StepPassword
	case ModeMnemonic:
		m.secretInput = ui.NewInput("word1 word2 ... word12", 512)
		m.secretInput.Focus()
		m.step = StepSecret
	case ModeKey:
		m.secretInput = ui.NewSecretInput("0x...", 130)
		m.secretInput.Focus()
		m.step = StepSecret
	default:
		m.walletAddress = m.status.WalletAddress
		m.step = StepComplete
	}
	return m, nil
}

func (m WizardModel) updateSecret() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.secretInput.Value())
	if value == "" {
		if m.mode == ModeMnemonic {
			m.secretError = "Recovery phrase is required"
		} else {
			m.secretError = "Private key is required"
		}
		return m, nil
	}
	m.secretError = ""
	m.secretInput.Blur()
	m.passwordInput.Focus()
	m.step = StepPassword
	return m, nil
}

func (m WizardModel) updatePassword() (tea.Model, tea.Cmd) {
	if m.passwordStep == 0 {
		if len(m.passwordInput.Value()) < MinPasswordLength {
			m.passwordError = fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
			return m, nil
		}
		m.passwordStep = 1
		m.passwordError = ""
		m.passwordInput.Blur()
		m.confirmInput.Focus()
		return m, nil
	}

	if m.passwordInput.Value() != m.confirmInput.Value() {
		m.passwordError = "Passwords do not match. Try again."
		m.confirmInput.Reset()
		m.confirmInput.Focus()
		return m, nil
	}

	m.working = true
	m.passwordError = ""
	return m, runWallet(m.accounts, m.mode, strings.TrimSpace(m.secretInput.Value()), m.passwordInput.Value())
}

// View renders the wizard
func (m WizardModel) View() string {
	if m.quitting {
		if m.result != nil && m.result.Cancelled {
			return DimStyle.Render("\n  Setup cancelled.\n\n")
		}
		return ""
	}

	var b strings.Builder

	if m.step > StepWelcome && m.step < StepComplete {
		b.WriteString("\n")
		b.WriteString(m.renderProgress())
		b.WriteString("\n")
	}

	switch m.step {
	case StepWelcome:
		b.WriteString(m.viewWelcome())
	case StepWalletChoice:
		b.WriteString("\n" + m.walletSelector.View())
	case StepSecret:
		b.WriteString(m.viewSecret())
	case StepPassword:
		b.WriteString(m.viewPassword())
	case StepBackup:
		b.WriteString(m.viewBackup())
	case StepComplete:
		b.WriteString(m.viewComplete())
	}

	return b.String()
}

func (m WizardModel) renderProgress() string {
	var currentStep int
	switch m.step {
	case StepWalletChoice, StepSecret:
		currentStep = 1
	case StepPassword:
		currentStep = 2
	case StepBackup, StepComplete:
		currentStep = 3
	}

	percent := float64(currentStep) / float64(totalSteps)
	bar := m.progress.ViewAs(percent)

	labels := "  Wallet       Password     Ready"
	return fmt.Sprintf("  %s\n%s", bar, DimStyle.Render(labels))
}

func (m WizardModel) viewWelcome() string {
	var b strings.Builder
	b.WriteString("\n\n")

	body := ui.TitleStyle.Render("Welcome to ethwallet") + "\n" +
		SubtitleStyle.Render("A single Ethereum account, kept on this device") + "\n\n"
	if m.status.HasWallet {
		body += ui.Field("Current", ui.AddressStyle.Render(m.status.WalletAddress)) + "\n" +
			ui.Warning("Creating or importing replaces this wallet.")
	} else {
		body += "No wallet found. Let's set one up."
	}

	b.WriteString(BoxStyle.Render(body))
	b.WriteString("\n\n")
	b.WriteString(ui.HelpStyle.Render("  Press Enter to continue..."))
	return b.String()
}

func (m WizardModel) viewSecret() string {
	var b strings.Builder
	b.WriteString("\n")

	if m.mode == ModeMnemonic {
		b.WriteString(ui.TitleStyle.Render("  Enter Recovery Phrase"))
		b.WriteString("\n\n")
		b.WriteString(DimStyle.Render("  Words separated by spaces. The first account is used.\n\n"))
	} else {
		b.WriteString(ui.TitleStyle.Render("  Enter Private Key"))
		b.WriteString("\n\n")
		b.WriteString(DimStyle.Render("  Hex, with or without 0x.\n\n"))
	}

	b.WriteString("  ")
	b.WriteString(m.secretInput.View())
	b.WriteString("\n")

	if m.secretError != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", ui.Failure(m.secretError)))
	}

	b.WriteString("\n")
	b.WriteString(ui.HelpStyle.Render("  Enter to continue • Esc back"))
	return b.String()
}

func (m WizardModel) viewPassword() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(ui.TitleStyle.Render("  Choose Wallet Password"))
	b.WriteString("\n\n")

	b.WriteString(DimStyle.Render("  This encrypts your wallet on disk.\n"))
	b.WriteString(DimStyle.Render(fmt.Sprintf("  Requirements: %d+ characters\n\n", MinPasswordLength)))

	if m.passwordStep == 0 {
		b.WriteString("  ")
		b.WriteString(m.passwordInput.View())
		b.WriteString("\n")
	} else {
		b.WriteString(fmt.Sprintf("  Password: %s\n\n", ui.SuccessStyle.Render(ui.SymbolCheck+" set")))
		b.WriteString("  ")
		b.WriteString(m.confirmInput.View())
		b.WriteString("\n")
	}

	if m.working {
		b.WriteString(fmt.Sprintf("\n  %s Encrypting wallet...\n", m.spinner.View()))
	} else if m.passwordError != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", ui.Failure(m.passwordError)))
	}

	b.WriteString("\n")
	b.WriteString(ui.HelpStyle.Render("  Enter to continue • Esc back"))
	return b.String()
}

func (m WizardModel) viewBackup() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(ui.TitleStyle.Render("  Back Up Your Recovery Phrase"))
	b.WriteString("\n\n")

	if m.mnemonic == "" {
		b.WriteString("  " + ui.Warning("The recovery phrase could not be read back. Run 'ethwallet wallet mnemonic' later."))
		b.WriteString("\n\n")
	} else {
		b.WriteString(DimStyle.Render("  Write these words down in order and keep them offline.\n"))
		b.WriteString(DimStyle.Render("  Anyone with them controls your funds.\n\n"))
		b.WriteString(PhraseBoxStyle.Render(renderPhrase(m.mnemonic)))
		b.WriteString("\n\n")
	}

	b.WriteString(ui.HelpStyle.Render("  Press Enter once you have written it down..."))
	return b.String()
}

// renderPhrase lays the words out numbered in rows of three.
func renderPhrase(phrase string) string {
	words := phraseWords(phrase)
	var rows []string
	for i := 0; i < len(words); i += 3 {
		var cells []string
		for j := i; j < i+3 && j < len(words); j++ {
			cells = append(cells, WordIndexStyle.Render(fmt.Sprintf("%d.", j+1))+" "+WordStyle.Render(words[j]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m WizardModel) viewComplete() string {
	var b strings.Builder
	b.WriteString("\n\n")

	walletInfo := DimStyle.Render("Not configured")
	if m.walletAddress != "" {
		walletInfo = ui.AddressStyle.Render(m.walletAddress)
	}

	content := fmt.Sprintf(
		"%s\n\n"+
			"%s\n\n"+
			"%s\n"+
			"  %s\n"+
			"  %s\n"+
			"  %s",
		ui.TitleStyle.Render("✨ You're all set!"),
		ui.Field("Wallet", walletInfo),
		DimStyle.Render("Try these:"),
		"ethwallet balance",
		"ethwallet send ether <to> <amount>",
		"ethwallet history",
	)

	b.WriteString(BoxStyle.Render(content))
	b.WriteString("\n\n")
	b.WriteString(ui.HelpStyle.Render("  Press Enter to finish..."))
	return b.String()
}

// RunWizard runs the setup wizard and returns the result
func RunWizard(accounts Accounts) (*SetupResult, error) {
	m := NewWizard(accounts)

	p := tea.NewProgram(*m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	return finalModel.(WizardModel).result, nil
}
