package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nickyhof/FlatDB"
	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/db"
	"github.com/nickyhof/FlatDB/ps"
)

const (
	PromptColor  = "\033[36m" // Cyan
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
	BoldColor    = "\033[1m"
)

// Version is set at build time via -ldflags
var Version = "dev"

// CLI holds the CLI state
type CLI struct {
	instance    *FlatDB.Instance
	engine      *db.Engine
	database    *core.Database // current database context
	showAST     bool
	history     []string
	historyFile string
	out         io.Writer
	exit        func(code int)
}

func main() {
	baseDir := flag.String("baseDir", "", "Catalog directory (plain or git repository)")
	gitUrl := flag.String("gitUrl", "", "Git URL to clone the catalog from")
	remote := flag.String("remote", "", "Remote catalog URL (http(s):// or s3://bucket/prefix)")
	s3Endpoint := flag.String("s3Endpoint", "", "S3-compatible endpoint for s3:// catalogs")
	s3Region := flag.String("s3Region", "", "AWS region for s3:// catalogs")
	database := flag.String("database", "", "Database to open (prompted for when empty)")
	sqlFile := flag.String("sqlFile", "", "SQL file to execute (non-interactive)")
	showAST := flag.Bool("ast", false, "Print the query AST before each result")
	userName := flag.String("name", "FlatDB", "User name for Git commits")
	userEmail := flag.String("email", "cli@flatdb.local", "User email for Git commits")
	flag.Parse()

	printBanner()

	var instance *FlatDB.Instance
	switch {
	case *remote != "":
		fmt.Printf("%sUsing remote catalog: %s%s\n", SuccessColor, *remote, ResetColor)
		s3 := &ps.S3Config{Endpoint: *s3Endpoint, Region: *s3Region}
		var err error
		instance, err = FlatDB.OpenPath(context.Background(), *remote, nil, s3)
		if err != nil {
			fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
	case *baseDir != "":
		fmt.Printf("%sUsing catalog: %s%s\n", SuccessColor, *baseDir, ResetColor)
		var gitUrlPtr *string
		if *gitUrl != "" {
			gitUrlPtr = gitUrl
		}
		var err error
		instance, err = FlatDB.OpenPath(context.Background(), *baseDir, gitUrlPtr, nil)
		if err != nil {
			fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
	default:
		// Database directories below the working directory
		fmt.Printf("%sUsing working directory%s\n", SuccessColor, ResetColor)
		var err error
		instance, err = FlatDB.OpenPath(context.Background(), ".", nil, nil)
		if err != nil {
			fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
	}

	cli := newCLI(instance, core.Identity{Name: *userName, Email: *userEmail}, os.Stdout)
	cli.showAST = *showAST
	cli.historyFile = getHistoryPath()
	cli.loadHistory()

	reader := bufio.NewReader(os.Stdin)

	name := *database
	if name == "" {
		fmt.Print("database? ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		name = strings.TrimSpace(line)
	}
	if !cli.useDatabase(name) {
		cli.exit(1)
		return
	}

	if *sqlFile != "" {
		if err := cli.importFile(*sqlFile); err != nil {
			fmt.Printf("%sError importing file: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
		return
	}

	cli.run(reader)
}

func newCLI(instance *FlatDB.Instance, identity core.Identity, out io.Writer) *CLI {
	return &CLI{
		instance: instance,
		engine:   instance.Engine(identity),
		history:  make([]string, 0),
		out:      out,
		exit:     os.Exit,
	}
}

func printBanner() {
	fmt.Println()
	bannerWidth := 39 // inner width of the banner box
	versionLine := fmt.Sprintf("FlatDB v%s", Version)
	padding := bannerWidth - len(versionLine) - 2 // -2 for "  " margins
	if padding < 0 {
		padding = 0
	}
	leftPad := padding / 2
	rightPad := padding - leftPad

	fmt.Printf("%s%s╔═══════════════════════════════════════╗%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s║ %*s%s%*s ║%s\n", BoldColor, PromptColor, leftPad, "", versionLine, rightPad, "", ResetColor)
	fmt.Printf("%s%s║     Flat-file SQL Query Engine        ║%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s╚═══════════════════════════════════════╝%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Println()
	fmt.Println("Type .help for commands, .quit to exit")
	fmt.Println()
}

// useDatabase opens the named database, prints its schema and makes it the
// current context. It reports whether the database could be opened.
func (cli *CLI) useDatabase(name string) bool {
	database, err := cli.instance.Database(name)
	if err != nil {
		fmt.Fprintf(cli.out, "**Error: unable to open database ‘%s’\n", name)
		return false
	}
	cli.database = database
	database.Print(cli.out)
	return true
}

func (cli *CLI) run(reader *bufio.Reader) {
	var multiLineBuffer strings.Builder

	for {
		fmt.Fprint(cli.out, cli.getPrompt(multiLineBuffer.Len() > 0))

		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			fmt.Fprintf(cli.out, "\n%sGoodbye!%s\n", SuccessColor, ResetColor)
			cli.saveHistory()
			return
		}

		input = strings.TrimSuffix(input, "\n")
		input = strings.TrimSuffix(input, "\r")

		if strings.TrimSpace(input) == "" {
			continue
		}

		// Special commands are only recognized outside a statement
		if multiLineBuffer.Len() == 0 && strings.HasPrefix(strings.TrimSpace(input), ".") {
			cli.handleCommand(input)
			continue
		}

		// Multi-line support: accumulate until we see a semicolon
		multiLineBuffer.WriteString(input)

		trimmed := strings.TrimSpace(multiLineBuffer.String())
		if !strings.HasSuffix(trimmed, ";") {
			multiLineBuffer.WriteString("\n")
			continue
		}
		multiLineBuffer.Reset()

		cli.addToHistory(strings.ReplaceAll(trimmed, "\n", " "))
		cli.execute(trimmed)
	}
}

// execute runs every statement in text, printing each result. A fatal error
// ends the process.
func (cli *CLI) execute(text string) {
	err := cli.engine.Run(cli.database, strings.NewReader(text), cli.printResult)
	if err != nil {
		cli.fatal(err)
	}
}

func (cli *CLI) printResult(r db.StatementResult) {
	if r.Err != nil {
		if db.Recoverable(r.Err) {
			fmt.Fprintf(cli.out, "%s✗ %v%s\n", ErrorColor, r.Err, ResetColor)
		}
		return
	}
	if cli.showAST {
		r.Query.Select().Print(cli.out)
	}
	r.Result.Render(cli.out)
}

func (cli *CLI) fatal(err error) {
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(cli.out, "ERROR: File not found.")
	} else {
		fmt.Fprintf(cli.out, "ERROR: %v\n", err)
	}
	cli.saveHistory()
	cli.exit(1)
}

func (cli *CLI) getPrompt(multiLine bool) string {
	if multiLine {
		return fmt.Sprintf("%s   ...>%s ", PromptColor, ResetColor)
	}

	dbPart := ""
	if cli.database != nil {
		dbPart = fmt.Sprintf(" (%s)", cli.database.Name)
	}

	return fmt.Sprintf("%squery%s?%s ", PromptColor, dbPart, ResetColor)
}

func (cli *CLI) handleCommand(input string) {
	parts := strings.Fields(strings.TrimSpace(input))
	if len(parts) == 0 {
		return
	}

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit", ".q":
		fmt.Fprintf(cli.out, "%sGoodbye!%s\n", SuccessColor, ResetColor)
		cli.saveHistory()
		cli.exit(0)

	case ".help", ".h", ".?":
		cli.printHelp()

	case ".databases", ".dbs":
		cli.showDatabases()

	case ".use":
		if len(parts) > 1 {
			cli.useDatabase(parts[1])
		} else {
			fmt.Fprintf(cli.out, "%s✗ Usage: .use <database>%s\n", ErrorColor, ResetColor)
		}

	case ".tables":
		for _, table := range cli.database.Tables {
			fmt.Fprintf(cli.out, "  %s\n", table.Name)
		}

	case ".schema":
		cli.database.Print(cli.out)

	case ".ast":
		cli.showAST = !cli.showAST
		state := "off"
		if cli.showAST {
			state = "on"
		}
		fmt.Fprintf(cli.out, "%s✓ AST printing %s%s\n", SuccessColor, state, ResetColor)

	case ".asof":
		txnID := ""
		if len(parts) > 1 {
			txnID = parts[1]
		}
		cli.checkout(txnID)

	case ".log":
		cli.printTransactions()

	case ".branches":
		cli.printBranches()

	case ".branch":
		switch len(parts) {
		case 2:
			cli.createBranch(parts[1], "")
		case 3:
			cli.createBranch(parts[1], parts[2])
		default:
			fmt.Fprintf(cli.out, "%s✗ Usage: .branch <name> [txn]%s\n", ErrorColor, ResetColor)
		}

	case ".history":
		cli.printHistory()

	case ".clear", ".cls":
		fmt.Fprint(cli.out, "\033[H\033[2J")

	case ".version":
		fmt.Fprintf(cli.out, "FlatDB version %s\n", Version)

	case ".import":
		if len(parts) > 1 {
			if err := cli.importFile(parts[1]); err != nil {
				fmt.Fprintf(cli.out, "%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
			}
		} else {
			fmt.Fprintf(cli.out, "%s✗ Usage: .import <file.sql>%s\n", ErrorColor, ResetColor)
		}

	default:
		fmt.Fprintf(cli.out, "%s✗ Unknown command: %s (type .help for commands)%s\n", ErrorColor, parts[0], ResetColor)
	}
}

func (cli *CLI) printHelp() {
	fmt.Fprintln(cli.out)
	fmt.Fprintf(cli.out, "%s%sSpecial Commands:%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(cli.out, "  .help, .h        Show this help message")
	fmt.Fprintln(cli.out, "  .quit, .exit     Exit the CLI")
	fmt.Fprintln(cli.out, "  .databases       List all databases")
	fmt.Fprintln(cli.out, "  .use <db>        Open another database")
	fmt.Fprintln(cli.out, "  .tables          List tables in the current database")
	fmt.Fprintln(cli.out, "  .schema          Print the current database schema")
	fmt.Fprintln(cli.out, "  .ast             Toggle printing of the query AST")
	fmt.Fprintln(cli.out, "  .asof [txn]      Query the catalog as of a commit (no txn: latest)")
	fmt.Fprintln(cli.out, "  .log             Show catalog commits")
	fmt.Fprintln(cli.out, "  .branches        List catalog branches (usable with .asof)")
	fmt.Fprintln(cli.out, "  .branch <name> [txn]  Name the latest commit, or txn, as a branch")
	fmt.Fprintln(cli.out, "  .import <file>   Execute SQL statements from a file")
	fmt.Fprintln(cli.out, "  .history         Show command history")
	fmt.Fprintln(cli.out, "  .clear           Clear the screen")
	fmt.Fprintln(cli.out, "  .version         Show version info")
	fmt.Fprintln(cli.out)
	fmt.Fprintf(cli.out, "%s%sQuery:%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(cli.out, "  SELECT <cols> | * FROM <table>")
	fmt.Fprintln(cli.out, "    [[INNER] JOIN <table> ON <col> = <col>]")
	fmt.Fprintln(cli.out, "    [WHERE <col> <op> <literal>]")
	fmt.Fprintln(cli.out, "    [ORDER BY <col> [ASC|DESC]] [LIMIT n] [INTO <table>];")
	fmt.Fprintln(cli.out)
	fmt.Fprintf(cli.out, "%s%sAggregates:%s SUM, AVG, MIN, MAX, COUNT\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintf(cli.out, "%s%sOperators:%s < <= > >= = <> LIKE\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(cli.out)
}

func (cli *CLI) showDatabases() {
	databases, err := cli.instance.Databases()
	if err != nil {
		fmt.Fprintf(cli.out, "%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
		return
	}
	for _, name := range databases {
		fmt.Fprintf(cli.out, "  %s\n", name)
	}
}

func (cli *CLI) checkout(txnID string) {
	txn, err := cli.instance.Persistence.Checkout(txnID)
	if err != nil {
		fmt.Fprintf(cli.out, "%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
		return
	}
	if txn.IsZero() {
		fmt.Fprintf(cli.out, "%s✓ Reading latest%s\n", SuccessColor, ResetColor)
		return
	}
	fmt.Fprintf(cli.out, "%s✓ Reading as of %s (%s)%s\n", SuccessColor, shortID(txn.Id), txn.When.Format(time.RFC3339), ResetColor)
}

func (cli *CLI) printTransactions() {
	persistence := cli.instance.Persistence
	if !persistence.IsVersioned() {
		fmt.Fprintf(cli.out, "%s✗ Error: %v%s\n", ErrorColor, ps.ErrNotVersioned, ResetColor)
		return
	}

	pinned := persistence.CheckedOut()
	for _, txn := range persistence.TransactionsSince(time.Time{}) {
		marker := " "
		if txn.Id == pinned {
			marker = "*"
		}
		fmt.Fprintf(cli.out, "%s %s  %s  %-30s %s\n", marker, shortID(txn.Id),
			txn.When.Format("2006-01-02 15:04:05"), txn.Author, strings.TrimSpace(txn.Message))
	}
}

func (cli *CLI) printBranches() {
	persistence := cli.instance.Persistence
	branches, err := persistence.ListBranches()
	if err != nil {
		fmt.Fprintf(cli.out, "%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
		return
	}

	current, _ := persistence.CurrentBranch()
	for _, branch := range branches {
		marker := " "
		if branch == current {
			marker = "*"
		}
		fmt.Fprintf(cli.out, "%s %s\n", marker, branch)
	}
}

func (cli *CLI) createBranch(name, at string) {
	txn, err := cli.instance.Persistence.Branch(name, at)
	if err != nil {
		fmt.Fprintf(cli.out, "%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
		return
	}
	fmt.Fprintf(cli.out, "%s✓ Branch %s at %s%s\n", SuccessColor, name, shortID(txn.Id), ResetColor)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (cli *CLI) addToHistory(cmd string) {
	// Don't add duplicates of the last command
	if len(cli.history) > 0 && cli.history[len(cli.history)-1] == cmd {
		return
	}
	cli.history = append(cli.history, cmd)

	if len(cli.history) > 1000 {
		cli.history = cli.history[len(cli.history)-1000:]
	}
}

func (cli *CLI) printHistory() {
	if len(cli.history) == 0 {
		fmt.Fprintln(cli.out, "No command history")
		return
	}

	start := 0
	if len(cli.history) > 20 {
		start = len(cli.history) - 20
	}

	for i := start; i < len(cli.history); i++ {
		fmt.Fprintf(cli.out, "  %3d  %s\n", i+1, cli.history[i])
	}
}

func getHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".flatdb_history")
}

func (cli *CLI) loadHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Open(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		cli.history = append(cli.history, scanner.Text())
	}
}

func (cli *CLI) saveHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Create(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	start := 0
	if len(cli.history) > 1000 {
		start = len(cli.history) - 1000
	}

	for i := start; i < len(cli.history); i++ {
		_, _ = file.WriteString(cli.history[i] + "\n")
	}
}

// importFile executes every statement in a file against the current
// database and prints a one-line summary per statement.
func (cli *CLI) importFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	successCount := 0
	errorCount := 0
	i := 0

	err = cli.engine.Run(cli.database, file, func(r db.StatementResult) {
		i++
		if r.Err != nil {
			fmt.Fprintf(cli.out, "%s[%d] ✗ %v%s\n", ErrorColor, i, r.Err, ResetColor)
			errorCount++
			return
		}
		successCount++
		stmt := truncate(r.Query.Statement().String(), 50)
		fmt.Fprintf(cli.out, "%s[%d] ✓ %s (%d rows)%s\n", SuccessColor, i, stmt, len(r.Result.Data), ResetColor)
	})
	if err != nil {
		cli.fatal(err)
		return err
	}

	fmt.Fprintf(cli.out, "\n%s✓ Import complete: %d succeeded, %d failed%s\n",
		SuccessColor, successCount, errorCount, ResetColor)

	return nil
}

// truncate shortens a string to max length with ellipsis
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
