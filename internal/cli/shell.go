package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aalvaropc/stockyard/internal/domain"
	"github.com/aalvaropc/stockyard/internal/infra/logger"
	"github.com/aalvaropc/stockyard/internal/registry"
	"github.com/aalvaropc/stockyard/internal/usecase"
)

// Shell is the interactive line-oriented front end over a registry.
type Shell struct {
	reg    *registry.Registry
	backup *usecase.Backup

	in    io.Reader
	out   io.Writer
	theme Theme

	prompt    string
	backupDir string
	prefix    string
	now       func() time.Time
	log       *slog.Logger

	commands map[string]command
}

type command struct {
	usage   string
	minArgs int
	run     func(args []string) (quit bool, err error)
}

type ShellOption func(*Shell)

func WithPrompt(p string) ShellOption {
	return func(s *Shell) { s.prompt = p }
}

// WithBackupDefaults sets what a bare `exportall` writes to.
func WithBackupDefaults(dir, prefix string) ShellOption {
	return func(s *Shell) { s.backupDir, s.prefix = dir, prefix }
}

// WithClock is useful for tests ("today").
func WithClock(now func() time.Time) ShellOption {
	return func(s *Shell) { s.now = now }
}

func WithShellLogger(l *slog.Logger) ShellOption {
	return func(s *Shell) { s.log = l }
}

func NewShell(reg *registry.Registry, backup *usecase.Backup, in io.Reader, out io.Writer, opts ...ShellOption) *Shell {
	def := domain.DefaultConfig()
	s := &Shell{
		reg:       reg,
		backup:    backup,
		in:        in,
		out:       out,
		theme:     NewTheme(out),
		prompt:    def.Shell.Prompt,
		backupDir: def.Backup.Dir,
		prefix:    def.Backup.Prefix,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Component("shell")
	}
	s.commands = s.commandTable()
	return s
}

// Run reads commands until exit, end of input, or ctx is done. Cancellation
// is observed between lines.
func (s *Shell) Run(ctx context.Context) error {
	s.println(s.theme.Title.Render("Stockyard shell. Type 'help' for commands."))

	br := bufio.NewReader(s.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, s.prompt)
		line, err := br.ReadString('\n')
		if line == "" && err != nil {
			if errors.Is(err, io.EOF) {
				s.println("")
				return nil
			}
			return err
		}

		if quit := s.Exec(strings.TrimRight(line, "\r\n")); quit {
			return nil
		}
	}
}

// Exec runs one command line and reports whether the session should end.
func (s *Shell) Exec(line string) bool {
	parts := splitArgs(strings.TrimSpace(line))
	if len(parts) == 0 {
		return false
	}
	name := strings.ToLower(parts[0])
	args := parts[1:]

	cmd, ok := s.commands[name]
	if !ok {
		s.println(s.theme.Warn.Render("Unknown command. Type 'help' for list."))
		return false
	}
	if len(args) < cmd.minArgs {
		s.println("Usage: " + cmd.usage)
		return false
	}

	s.log.Debug("shell.command", "name", name, "args", len(args))
	quit, err := cmd.run(args)
	if err != nil {
		s.log.Warn("shell.command.failed", "name", name, "error", err.Error())
		s.println(s.theme.Error.Render("Error: " + userMessage(err)))
	}
	return quit
}

var helpOrder = []string{
	"help", "add", "remove", "receive", "deliver", "pay", "rename", "threshold",
	"list", "low", "find", "size",
	"exportall", "export", "import",
	"exportcsv", "exportjson", "exportxml",
	"importcsv", "importjson", "importxml",
	"exit",
}

func (s *Shell) commandTable() map[string]command {
	t := map[string]command{
		"help":      {usage: "help", run: s.cmdHelp},
		"add":       {usage: "add <id> <initialStock> <threshold> [name]", minArgs: 3, run: s.cmdAdd},
		"remove":    {usage: "remove <id>", minArgs: 1, run: s.cmdRemove},
		"receive":   {usage: "receive <id> <qty> <date|today> <shipper> <cost>", minArgs: 5, run: s.cmdReceive},
		"deliver":   {usage: "deliver <id> <qty>", minArgs: 2, run: s.cmdDeliver},
		"pay":       {usage: "pay <id> <amount>", minArgs: 2, run: s.cmdPay},
		"rename":    {usage: "rename <id> <name>", minArgs: 2, run: s.cmdRename},
		"threshold": {usage: "threshold <id> <n>", minArgs: 2, run: s.cmdThreshold},
		"list":      {usage: "list", run: s.cmdList},
		"low":       {usage: "low", run: s.cmdLow},
		"find":      {usage: "find <id>", minArgs: 1, run: s.cmdFind},
		"size":      {usage: "size", run: s.cmdSize},
		"exportall": {usage: "exportall [dir] [prefix]", run: s.cmdExportAll},
		"export":    {usage: "export <file.csv|file.json|file.xml>", minArgs: 1, run: s.cmdExport},
		"import":    {usage: "import <file.csv|file.json|file.xml>", minArgs: 1, run: s.cmdImport},
		"exit":      {usage: "exit", run: s.cmdExit},
	}
	for _, f := range domain.Formats() {
		t["export"+string(f)] = command{usage: "export" + string(f) + " <file>", minArgs: 1, run: s.exportAs(f)}
		t["import"+string(f)] = command{usage: "import" + string(f) + " <file>", minArgs: 1, run: s.importAs(f)}
	}
	t["quit"] = t["exit"]
	return t
}

func (s *Shell) cmdHelp(_ []string) (bool, error) {
	s.println(s.theme.Title.Render("Commands:"))
	for _, name := range helpOrder {
		s.println("  " + s.commands[name].usage)
	}
	s.println(s.theme.Help.Render(`  Quote arguments with spaces: add P123 10 3 "Red Widget"`))
	return false, nil
}

func (s *Shell) cmdAdd(args []string) (bool, error) {
	stock, err := parseInt(args[1])
	if err != nil {
		return false, err
	}
	threshold, err := parseInt(args[2])
	if err != nil {
		return false, err
	}
	name := ""
	if len(args) > 3 {
		name = args[3]
	}

	p, err := s.reg.Create(args[0], stock, threshold, name)
	if err != nil {
		return false, err
	}
	s.println(s.theme.Success.Render("Added: ") + p.String())
	return false, nil
}

func (s *Shell) cmdRemove(args []string) (bool, error) {
	s.result(s.reg.Remove(args[0]), "Removed.", "Not found.")
	return false, nil
}

func (s *Shell) cmdReceive(args []string) (bool, error) {
	qty, err := parseInt(args[1])
	if err != nil {
		return false, err
	}
	date, err := s.parseDate(args[2])
	if err != nil {
		return false, err
	}
	cost, err := parseAmount(args[4])
	if err != nil {
		return false, err
	}

	found, err := s.reg.ReceiveShipment(args[0], domain.Shipment{
		Quantity: qty,
		Date:     date,
		Shipper:  args[3],
		Cost:     decimal.NewNullDecimal(cost),
	})
	if err != nil {
		return false, err
	}
	s.result(found, "Shipment recorded.", "Product not found.")
	return false, nil
}

func (s *Shell) cmdDeliver(args []string) (bool, error) {
	qty, err := parseInt(args[1])
	if err != nil {
		return false, err
	}
	delivered, found, err := s.reg.Deliver(args[0], qty)
	if err != nil {
		return false, err
	}
	switch {
	case !found:
		s.println(s.theme.Warn.Render("Product not found."))
	case !delivered:
		s.println(s.theme.Warn.Render("Insufficient stock."))
	default:
		s.println(s.theme.Success.Render("Delivered."))
	}
	return false, nil
}

func (s *Shell) cmdPay(args []string) (bool, error) {
	amount, err := parseAmount(args[1])
	if err != nil {
		return false, err
	}
	remaining, found, err := s.reg.Pay(args[0], amount)
	if err != nil {
		return false, err
	}
	if !found {
		s.println(s.theme.Warn.Render("Product not found."))
		return false, nil
	}
	s.println("Remaining due: " + domain.FormatMoney(remaining))
	return false, nil
}

func (s *Shell) cmdRename(args []string) (bool, error) {
	s.result(s.reg.Rename(args[0], args[1]), "Renamed.", "Not found.")
	return false, nil
}

func (s *Shell) cmdThreshold(args []string) (bool, error) {
	n, err := parseInt(args[1])
	if err != nil {
		return false, err
	}
	s.result(s.reg.SetThreshold(args[0], n), "Threshold updated.", "Not found.")
	return false, nil
}

func (s *Shell) cmdList(_ []string) (bool, error) {
	s.printProducts(s.reg.ListAll(), "(no products)")
	return false, nil
}

func (s *Shell) cmdLow(_ []string) (bool, error) {
	s.printProducts(s.reg.LowStock(), "All products at or above threshold.")
	return false, nil
}

func (s *Shell) cmdFind(args []string) (bool, error) {
	p, ok := s.reg.Find(args[0])
	if !ok {
		s.println(s.theme.Warn.Render("Not found."))
		return false, nil
	}
	s.println(p.String())
	return false, nil
}

func (s *Shell) cmdSize(_ []string) (bool, error) {
	s.println("Inventory size: " + strconv.Itoa(s.reg.Size()))
	return false, nil
}

func (s *Shell) cmdExportAll(args []string) (bool, error) {
	dir, prefix := s.backupDir, s.prefix
	if len(args) > 0 {
		dir = args[0]
	}
	if len(args) > 1 {
		prefix = args[1]
	}

	paths, err := s.backup.ExportAll(dir, prefix)
	if err != nil {
		return false, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	s.println(s.theme.Success.Render("Exported to " + abs))
	for _, p := range paths {
		s.println(s.theme.Faint.Render("  " + filepath.Base(p)))
	}
	return false, nil
}

func (s *Shell) cmdExport(args []string) (bool, error) {
	f, err := usecase.FormatFromPath(args[0])
	if err != nil {
		return false, err
	}
	return s.exportAs(f)(args)
}

func (s *Shell) cmdImport(args []string) (bool, error) {
	f, err := usecase.FormatFromPath(args[0])
	if err != nil {
		return false, err
	}
	return s.importAs(f)(args)
}

func (s *Shell) exportAs(f domain.Format) func([]string) (bool, error) {
	return func(args []string) (bool, error) {
		if err := s.backup.Export(f, args[0]); err != nil {
			return false, err
		}
		s.println(s.theme.Success.Render("Exported " + strings.ToUpper(string(f)) + "."))
		return false, nil
	}
}

func (s *Shell) importAs(f domain.Format) func([]string) (bool, error) {
	return func(args []string) (bool, error) {
		report, err := s.backup.Import(f, args[0])
		if err != nil {
			return false, err
		}
		msg := fmt.Sprintf("Imported %s: %d applied", strings.ToUpper(string(f)), report.Applied)
		if report.Skipped > 0 {
			s.println(s.theme.Warn.Render(fmt.Sprintf("%s, %d skipped.", msg, report.Skipped)))
			return false, nil
		}
		s.println(s.theme.Success.Render(msg + "."))
		return false, nil
	}
}

func (s *Shell) cmdExit(_ []string) (bool, error) {
	s.println("Bye.")
	return true, nil
}

func (s *Shell) printProducts(ps []*domain.Product, empty string) {
	if len(ps) == 0 {
		s.println(s.theme.Faint.Render(empty))
		return
	}
	slices.SortFunc(ps, func(a, b *domain.Product) int { return strings.Compare(a.ID(), b.ID()) })
	for _, p := range ps {
		s.println(p.String())
	}
}

func (s *Shell) result(ok bool, yes, no string) {
	if ok {
		s.println(s.theme.Success.Render(yes))
		return
	}
	s.println(s.theme.Warn.Render(no))
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}

func (s *Shell) parseDate(arg string) (time.Time, error) {
	if strings.EqualFold(arg, "today") {
		return domain.CalendarDate(s.now()), nil
	}
	d, err := domain.ParseDate(arg)
	if err != nil {
		return time.Time{}, argError("invalid date %q (want YYYY-MM-DD or today)", arg)
	}
	return d, nil
}

func parseInt(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, argError("invalid number %q", arg)
	}
	return n, nil
}

func parseAmount(arg string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(arg)
	if err != nil {
		return decimal.Decimal{}, argError("invalid amount %q", arg)
	}
	return d, nil
}

func argError(format, arg string) error {
	return &domain.OpError{
		Op:   "shell.args",
		Kind: domain.KindInvalidArgument,
		Err:  fmt.Errorf(format+": %w", arg, domain.ErrInvalidArgument),
	}
}
