package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-ledger/internal/classify"
	"github.com/dvloznov/expense-ledger/internal/config"
	"github.com/dvloznov/expense-ledger/internal/domain"
	"github.com/dvloznov/expense-ledger/internal/logger"
	"github.com/dvloznov/expense-ledger/internal/parser"
	"github.com/dvloznov/expense-ledger/internal/stats"
	"github.com/dvloznov/expense-ledger/internal/store"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "parse":
		runParse(log)
	case "add":
		runAdd(log)
	case "list":
		runList(log)
	case "stats":
		runStats(log)
	case "categories":
		runCategories(log)
	case "suggest":
		runSuggest(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Expense Ledger CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  parse       Parse free-form text into a transaction draft")
	fmt.Println("  add         Record a transaction directly")
	fmt.Println("  list        Show recorded transactions")
	fmt.Println("  stats       Show spending statistics for a period")
	fmt.Println("  categories  Show the category taxonomy")
	fmt.Println("  suggest     Suggest a category for a description")
	fmt.Println("  help        Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func openStore(log zerolog.Logger, cfg *config.Config, override string) *store.Store {
	path := cfg.DataFile
	if override != "" {
		path = override
	}
	s, err := store.Open(path, log)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to open transaction store")
	}
	return s
}

func loadConfig(log zerolog.Logger, path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	return cfg
}

// readInput returns the text to parse: the -text flag if given, otherwise
// stdin. On an interactive terminal it prompts first, covering the paste
// workflow for users whose share sheet cannot reach the API directly.
func readInput(textFlag string) (string, error) {
	if textFlag != "" {
		return textFlag, nil
	}

	if info, err := os.Stdin.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
		fmt.Println("粘贴要解析的文本，以 Ctrl-D 结束:")
	}

	data, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func runParse(log zerolog.Logger) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	text := fs.String("text", "", "Text to parse (reads stdin when omitted)")
	configPath := fs.String("config", "", "Path to the YAML config file")
	dataFile := fs.String("data", "", "Path to the transactions file (overrides config)")
	save := fs.Bool("save", false, "Record the parsed draft immediately")
	fs.Parse(os.Args[2:])

	cfg := loadConfig(log, *configPath)

	input, err := readInput(*text)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read input")
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure parse provider")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	draft, err := parser.NewService(provider, log).Parse(ctx, input)
	if err != nil {
		log.Fatal().Err(err).Msg("Parse failed")
	}

	printDraft(draft)

	if *save {
		s := openStore(log, cfg, *dataFile)
		tx, err := s.Add(*draft)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to record transaction")
		}
		color.Green("已记录 %s", tx.ID)
	}
}

func runAdd(log zerolog.Logger) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	amount := fs.Float64("amount", 0, "Transaction amount (positive)")
	kind := fs.String("type", "expense", "Transaction type: expense or income")
	category := fs.String("category", "其他", "Category name")
	description := fs.String("description", "", "Transaction description")
	date := fs.String("date", "", "Transaction date, YYYY-MM-DD or YYYY-MM-DD HH:MM (defaults to now)")
	configPath := fs.String("config", "", "Path to the YAML config file")
	dataFile := fs.String("data", "", "Path to the transactions file (overrides config)")
	fs.Parse(os.Args[2:])

	when := time.Now()
	if *date != "" {
		var err error
		when, err = parseCLIDate(*date)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -date")
		}
	}

	cfg := loadConfig(log, *configPath)
	s := openStore(log, cfg, *dataFile)

	tx, err := s.Add(domain.Draft{
		Amount:      *amount,
		Kind:        domain.Kind(*kind),
		Category:    *category,
		Description: *description,
		Date:        when,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to record transaction")
	}

	color.Green("已记录 %s", tx.ID)
	printTransaction(tx)
}

func runList(log zerolog.Logger) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum number of transactions to show (0 for all)")
	configPath := fs.String("config", "", "Path to the YAML config file")
	dataFile := fs.String("data", "", "Path to the transactions file (overrides config)")
	fs.Parse(os.Args[2:])

	cfg := loadConfig(log, *configPath)
	s := openStore(log, cfg, *dataFile)

	txs := s.List()
	if *limit > 0 && len(txs) > *limit {
		txs = txs[:*limit]
	}

	if len(txs) == 0 {
		fmt.Println("暂无交易记录")
		return
	}

	for _, tx := range txs {
		printTransaction(tx)
	}
	fmt.Printf("\n%d 条记录\n", len(txs))
}

func runStats(log zerolog.Logger) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	period := fs.String("period", "month", "Window: week, month or year")
	anchor := fs.String("anchor", "", "Any date inside the window, YYYY-MM-DD (defaults to today)")
	configPath := fs.String("config", "", "Path to the YAML config file")
	dataFile := fs.String("data", "", "Path to the transactions file (overrides config)")
	fs.Parse(os.Args[2:])

	when := time.Now()
	if *anchor != "" {
		var err error
		when, err = time.ParseInLocation("2006-01-02", *anchor, time.Local)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -anchor")
		}
	}

	cfg := loadConfig(log, *configPath)
	s := openStore(log, cfg, *dataFile)

	summary, err := stats.Compute(s.List(), stats.Period(*period), when)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compute statistics")
	}

	bold := color.New(color.Bold)
	bold.Printf("\n%s 支出统计  %s 至 %s\n\n",
		periodLabel(summary.Period),
		summary.Start.Format("2006-01-02"),
		summary.End.AddDate(0, 0, -1).Format("2006-01-02"))
	fmt.Printf("总支出: %s\n", color.RedString("%.2f", summary.Total))
	fmt.Printf("平均:   %.2f\n\n", summary.Average)

	if len(summary.Ranking) == 0 {
		fmt.Println("该时段没有支出记录")
		return
	}

	bold.Println("分类排行:")
	for i, rank := range summary.Ranking {
		fmt.Printf("  %d. %-6s %10.2f  %5.1f%%\n", i+1, rank.Category, rank.Amount, rank.Percent)
	}
}

func runCategories(log zerolog.Logger) {
	for _, c := range domain.Categories {
		fmt.Println(c)
	}
}

func runSuggest(log zerolog.Logger) {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	description := fs.String("description", "", "Description to classify")
	configPath := fs.String("config", "", "Path to the YAML config file")
	dataFile := fs.String("data", "", "Path to the transactions file (overrides config)")
	fs.Parse(os.Args[2:])

	if *description == "" {
		log.Fatal().Msg("Error: -description is required")
	}

	cfg := loadConfig(log, *configPath)
	s := openStore(log, cfg, *dataFile)

	suggester := classify.NewSuggester(s.List())
	if !suggester.Trained() {
		fmt.Println("历史记录不足，暂时无法建议分类")
		return
	}

	category, ok := suggester.Suggest(*description)
	if !ok {
		fmt.Println("没有合适的分类建议")
		return
	}
	fmt.Printf("建议分类: %s\n", color.CyanString(category))
}

func buildProvider(cfg *config.Config) (parser.Provider, error) {
	switch cfg.Provider {
	case "deepseek":
		return parser.NewDeepSeekProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case "gemini":
		return parser.NewGeminiProvider(cfg.APIKey, cfg.Model), nil
	case "claude":
		return parser.NewClaudeProvider(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (expected deepseek, gemini or claude)", cfg.Provider)
	}
}

func printDraft(draft *domain.Draft) {
	bold := color.New(color.Bold)
	bold.Println("\n=== 解析结果 ===")
	fmt.Printf("金额:   %s\n", amountString(draft.Kind, draft.Amount))
	fmt.Printf("类型:   %s\n", kindLabel(draft.Kind))
	fmt.Printf("分类:   %s\n", draft.Category)
	fmt.Printf("描述:   %s\n", draft.Description)
	fmt.Printf("日期:   %s\n", draft.Date.Format("2006-01-02 15:04"))
}

func printTransaction(tx domain.Transaction) {
	fmt.Printf("%s  %s  %-6s %s\n",
		tx.Date.Format("2006-01-02 15:04"),
		amountString(tx.Kind, tx.Amount),
		tx.Category,
		tx.Description)
}

func amountString(kind domain.Kind, amount float64) string {
	if kind == domain.KindIncome {
		return color.GreenString("+%8.2f", amount)
	}
	return color.RedString("-%8.2f", amount)
}

func kindLabel(kind domain.Kind) string {
	if kind == domain.KindIncome {
		return "收入"
	}
	return "支出"
}

func periodLabel(p stats.Period) string {
	switch p {
	case stats.PeriodWeek:
		return "本周"
	case stats.PeriodYear:
		return "本年"
	default:
		return "本月"
	}
}

var cliDateFormats = []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

func parseCLIDate(s string) (time.Time, error) {
	for _, layout := range cliDateFormats {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
