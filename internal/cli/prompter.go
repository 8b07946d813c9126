package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jhalloran/tally/internal/engine"
	"github.com/jhalloran/tally/internal/model"
	"github.com/schollz/progressbar/v3"
)

// Prompter implements the interactive review loop on a terminal.
type Prompter struct {
	startTime   time.Time
	writer      io.Writer
	reader      *ContextReader
	progressBar *progressbar.ProgressBar
	total       int
	edited      int
}

// NewPrompter creates a prompter. Nil reader/writer default to
// stdin/stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		reader:    NewContextReader(reader),
		writer:    writer,
		startTime: time.Now(),
	}
}

// SetTotal sets the number of transactions in this session and starts the
// progress bar.
func (p *Prompter) SetTotal(total int) {
	p.total = total
	p.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Reviewing transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(p.writer)
		}),
	)
}

// Review presents one transaction and its suggestion, lets the user edit
// the selection, and returns the verdict.
func (p *Prompter) Review(ctx context.Context, txn model.BankTransaction, suggestion model.Suggestion, availableTypes []model.TransactionType, bankAccounts []model.BankAccount) (engine.ReviewResult, error) {
	p.advanceProgress()

	ct := model.NewCategorizedTransaction(txn, suggestion)
	if ct.SelectedType == model.TypeTransfer && suggestion.TransferToAccount != "" {
		ct.TransferToAccountID = resolveAccountID(suggestion.TransferToAccount, bankAccounts)
	}

	if _, err := fmt.Fprintln(p.writer, RenderBox("Transaction Review", p.formatReview(txn, suggestion))); err != nil {
		return engine.ReviewResult{}, fmt.Errorf("failed to write review box: %w", err)
	}

	for {
		p.printSelection(ct, bankAccounts)

		choice, err := p.promptChoice(ctx, "[A]pply  [T]ype  [V]endor  [C]ategory  [D]escription  [S]kip  [Q]uit",
			[]string{"a", "t", "v", "c", "d", "s", "q"})
		if err != nil {
			return engine.ReviewResult{}, err
		}

		switch choice {
		case "a":
			if ct.SelectedType == model.TypeTransfer && ct.TransferToAccountID == "" {
				accountID, err := p.chooseTransferAccount(ctx, txn.AccountID, bankAccounts)
				if err != nil {
					return engine.ReviewResult{}, err
				}
				ct.TransferToAccountID = accountID
			}
			return engine.ReviewResult{Action: engine.ActionApply, Categorized: ct}, nil

		case "t":
			selected, err := p.chooseType(ctx, availableTypes)
			if err != nil {
				return engine.ReviewResult{}, err
			}
			ct.SelectedType = selected
			if selected == model.TypeTransfer && ct.TransferToAccountID == "" {
				accountID, err := p.chooseTransferAccount(ctx, txn.AccountID, bankAccounts)
				if err != nil {
					return engine.ReviewResult{}, err
				}
				ct.TransferToAccountID = accountID
			}
			p.edited++

		case "v":
			value, err := p.promptLine(ctx, "Vendor name")
			if err != nil {
				return engine.ReviewResult{}, err
			}
			ct.VendorName = value
			p.edited++

		case "c":
			value, err := p.promptLine(ctx, "Category")
			if err != nil {
				return engine.ReviewResult{}, err
			}
			ct.Category = value
			p.edited++

		case "d":
			value, err := p.promptLine(ctx, "Description")
			if err != nil {
				return engine.ReviewResult{}, err
			}
			ct.Description = value
			p.edited++

		case "s":
			return engine.ReviewResult{Action: engine.ActionSkip}, nil

		case "q":
			return engine.ReviewResult{Action: engine.ActionQuit}, nil
		}
	}
}

// ShowCompletion prints the session summary.
func (p *Prompter) ShowCompletion(summary engine.Summary) {
	if p.progressBar != nil {
		if err := p.progressBar.Finish(); err != nil {
			slog.Warn("failed to finish progress bar", "error", err)
		}
		_, _ = fmt.Fprintln(p.writer)
	}

	content := fmt.Sprintf("Reviewed: %d of %d\n", summary.Reviewed, p.total) +
		fmt.Sprintf("Applied: %d\n", summary.Applied) +
		fmt.Sprintf("Skipped: %d\n", summary.Skipped) +
		fmt.Sprintf("Failed: %d\n", summary.Failed) +
		fmt.Sprintf("Edited before applying: %d\n", p.edited) +
		fmt.Sprintf("Duration: %s", time.Since(p.startTime).Round(time.Second))

	if _, err := fmt.Fprintln(p.writer, RenderBox("Session Complete", content)); err != nil {
		slog.Warn("failed to write completion box", "error", err)
	}
}

func (p *Prompter) advanceProgress() {
	if p.progressBar != nil {
		if err := p.progressBar.Add(1); err != nil {
			slog.Warn("failed to update progress bar", "error", err)
		}
		_, _ = fmt.Fprintln(p.writer)
	}
}

func (p *Prompter) formatReview(txn model.BankTransaction, suggestion model.Suggestion) string {
	direction := "credit"
	if txn.IsDebit {
		direction = "debit"
	}

	details := fmt.Sprintf("Date: %s\n", txn.Date.Format("Jan 2, 2006")) +
		fmt.Sprintf("Amount: $%.2f (%s)\n", txn.Amount, direction) +
		fmt.Sprintf("Description: %s\n", txn.Description)
	if txn.Payee != "" {
		details += fmt.Sprintf("Payee: %s\n", txn.Payee)
	}
	if txn.Reference != "" {
		details += fmt.Sprintf("Reference: %s\n", txn.Reference)
	}

	suggested := fmt.Sprintf("\n%s Suggestion: %s (%d%% confidence)",
		RobotIcon,
		SuccessStyle.Render(model.DisplayName(suggestion.Type)),
		suggestion.Confidence)
	if suggestion.Reasoning != "" {
		suggested += "\n" + SubtleStyle.Render(suggestion.Reasoning)
	}

	return details + suggested
}

func (p *Prompter) printSelection(ct model.CategorizedTransaction, bankAccounts []model.BankAccount) {
	lines := fmt.Sprintf("\nCurrent selection: %s\n", model.DisplayName(ct.SelectedType))
	switch ct.SelectedType {
	case model.TypeTransfer:
		name := ct.TransferToAccountID
		for _, acct := range bankAccounts {
			if acct.ID == ct.TransferToAccountID {
				name = acct.Name
				break
			}
		}
		if name != "" {
			lines += fmt.Sprintf("  Other account: %s\n", name)
		}
	case model.TypeSkip:
	default:
		if ct.VendorName != "" {
			lines += fmt.Sprintf("  Vendor: %s\n", ct.VendorName)
		}
		if ct.Category != "" {
			lines += fmt.Sprintf("  Category: %s\n", ct.Category)
		}
		if ct.Description != "" {
			lines += fmt.Sprintf("  Description: %s\n", ct.Description)
		}
	}
	_, _ = fmt.Fprint(p.writer, lines)
}

func (p *Prompter) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for {
		if _, err := fmt.Fprintf(p.writer, "%s", FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.reader.ReadLine(ctx)
		if err != nil {
			if err == io.EOF {
				return "", fmt.Errorf("input terminated")
			}
			return "", err
		}

		choice := strings.ToLower(input)
		for _, valid := range validChoices {
			if choice == valid {
				return choice, nil
			}
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Invalid choice. Please try again.")); err != nil {
			slog.Warn("failed to write error message", "error", err)
		}
	}
}

func (p *Prompter) promptLine(ctx context.Context, prompt string) (string, error) {
	for {
		if _, err := fmt.Fprintf(p.writer, "%s", FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.reader.ReadLine(ctx)
		if err != nil {
			return "", err
		}
		if input == "" {
			if _, err := fmt.Fprintln(p.writer, FormatError("Value cannot be empty. Please try again.")); err != nil {
				slog.Warn("failed to write error message", "error", err)
			}
			continue
		}
		return input, nil
	}
}

func (p *Prompter) chooseType(ctx context.Context, availableTypes []model.TransactionType) (model.TransactionType, error) {
	_, _ = fmt.Fprintln(p.writer, FormatInfo("Available types:"))
	valid := make([]string, 0, len(availableTypes))
	for i, t := range availableTypes {
		_, _ = fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, model.DisplayName(t))
		valid = append(valid, strconv.Itoa(i+1))
	}

	choice, err := p.promptChoice(ctx, "Type", valid)
	if err != nil {
		return "", err
	}
	index, _ := strconv.Atoi(choice)
	return availableTypes[index-1], nil
}

func (p *Prompter) chooseTransferAccount(ctx context.Context, ownAccountID string, bankAccounts []model.BankAccount) (string, error) {
	others := make([]model.BankAccount, 0, len(bankAccounts))
	for _, acct := range bankAccounts {
		if acct.ID != ownAccountID {
			others = append(others, acct)
		}
	}
	if len(others) == 0 {
		return "", fmt.Errorf("no other account to transfer to")
	}

	_, _ = fmt.Fprintln(p.writer, FormatInfo("Other account:"))
	valid := make([]string, 0, len(others))
	for i, acct := range others {
		label := acct.Name
		if acct.BankName != "" {
			label += " (" + acct.BankName + ")"
		}
		_, _ = fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, label)
		valid = append(valid, strconv.Itoa(i+1))
	}

	choice, err := p.promptChoice(ctx, "Account", valid)
	if err != nil {
		return "", err
	}
	index, _ := strconv.Atoi(choice)
	return others[index-1].ID, nil
}

func resolveAccountID(name string, bankAccounts []model.BankAccount) string {
	for _, acct := range bankAccounts {
		if strings.EqualFold(acct.Name, name) {
			return acct.ID
		}
	}
	return ""
}
