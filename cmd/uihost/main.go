package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/l1jgo/uihost/internal/config"
	"github.com/l1jgo/uihost/internal/controllers"
	"github.com/l1jgo/uihost/internal/core/controller"
	"github.com/l1jgo/uihost/internal/data"
	"github.com/l1jgo/uihost/internal/host"
	"github.com/l1jgo/uihost/internal/persist"
	"github.com/l1jgo/uihost/internal/scripting"
	"github.com/l1jgo/uihost/internal/states"
	"github.com/l1jgo/uihost/internal/systems"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

var titleCase = cases.Title(language.English)

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Printf("\033[36;1m  │\033[0m %-41s \033[36;1m│\033[0m\n", titleCase.String(name)+"  v0.1.0")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main host logic ───────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/uihost.toml"
	if p := os.Getenv("UIHOST_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Host.Name)

	// 3. Journal sink: PostgreSQL when configured, log otherwise
	printSection("Journal")
	session := uuid.New()
	var sink controllers.JournalSink = controllers.LogSink{Log: log}
	if cfg.Database.DSN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.OpenJournal(ctx, cfg.Database, cfg.Host.Name, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		applied, err := db.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printStat("journal migrations applied", applied)
		sink = persist.NewJournalRepo(db, session)
	} else {
		printOK("journal kept in log")
	}
	printOK("session " + session.String())
	fmt.Println()

	// 4. Manifest and host services
	printSection("Controllers")
	manifest, err := data.LoadManifest(cfg.Manifest.Path)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}
	printStat("manifest entries", manifest.Count())

	h := host.New(log)
	catalog := states.Catalog()
	if err := controllers.RegisterScreens(h.Screens()); err != nil {
		return fmt.Errorf("register screens: %w", err)
	}

	deps := controllers.Deps{
		Catalog:     catalog,
		Screens:     h.Screens(),
		Nav:         h.States(),
		Sink:        sink,
		FlushFrames: cfg.Journal.FlushFrames,
		Timing:      controllers.DefaultTiming(),
		Log:         log,
	}
	var regs []controller.Registration
	for _, r := range controllers.Registrations(deps) {
		if !manifest.Enabled(r.Name) {
			log.Info("controller disabled by manifest", zap.String("name", r.Name))
			continue
		}
		regs = append(regs, r)
	}

	// 5. Lua controllers
	if cfg.Scripting.Enabled && len(manifest.Scripts) > 0 {
		engine, err := scripting.NewEngine(cfg.Scripting.Dir, manifest.Scripts, log)
		if err != nil {
			return fmt.Errorf("load scripts: %w", err)
		}
		defer engine.Close()
		if err := engine.Validate(catalog); err != nil {
			return fmt.Errorf("validate scripts: %w", err)
		}
		regs = append(regs, controller.Provide("scripts", func() *scripting.Controller {
			return scripting.NewController(engine, catalog)
		}))
		printStat("lua controllers", len(engine.Scripts()))
	}

	// 6. Initialize controllers; any configuration defect stops startup here
	if err := h.Start(regs...); err != nil {
		return err
	}
	reg := h.Dispatcher().Registry()
	printStat("controllers registered", reg.Len())
	reg.ForEach(func(slot int, c controller.Controller) {
		printOK(fmt.Sprintf("%d %s", slot, titleCase.String(reg.Name(controller.TypeOf(c)))))
	})
	fmt.Println()

	// 7. Load systems and enter the main menu
	if err := h.Systems().Load(systems.NewTimer()); err != nil {
		return fmt.Errorf("load timer: %w", err)
	}
	if err := h.Systems().Load(systems.NewChat(200)); err != nil {
		return fmt.Errorf("load chat: %w", err)
	}
	h.States().Request(&states.MainMenu{})

	// 8. Run until signalled
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printSection("Ready")
	printReady(fmt.Sprintf("host loop started (tick: %s)", cfg.Host.TickRate))
	fmt.Println()

	if err := h.Run(ctx, cfg.Host.TickRate, cfg.Host.MaxFrames); err != nil {
		return err
	}

	log.Info("shutting down")
	h.Shutdown()
	if j, ok := reg.Lookup(reflect.TypeFor[*controllers.JournalController]()); ok {
		j.(*controllers.JournalController).Flush()
	}
	log.Info("host stopped")
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
