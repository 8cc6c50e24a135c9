package main

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/codyseavey/mtgssm/internal/config"
	"github.com/codyseavey/mtgssm/internal/database"
	"github.com/codyseavey/mtgssm/internal/services"
)

type globalFlags struct {
	dbPath      string
	catalogPath string
	aliasesPath string
	workers     int
	verbose     bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	matcherOnce sync.Once
	matcher     *services.LegacyMatcher
	matcherErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig reads the environment once and lets non-empty flags win.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = err
			return
		}
		if v := strings.TrimSpace(c.flags.dbPath); v != "" {
			cfg.DBPath = v
		}
		if v := strings.TrimSpace(c.flags.catalogPath); v != "" {
			cfg.CatalogPath = v
		}
		if v := strings.TrimSpace(c.flags.aliasesPath); v != "" {
			cfg.SetAliasesPath = v
		}
		if c.flags.workers > 0 {
			cfg.ImportWorkers = c.flags.workers
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) scryfall() (*services.ScryfallService, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return services.NewScryfallService(cfg.ScryfallBaseURL), nil
}

// legacyMatcher loads the catalog and alias table on first use.
func (c *commandContext) legacyMatcher() (*services.LegacyMatcher, error) {
	c.matcherOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.matcherErr = err
			return
		}
		scryfall := services.NewScryfallService(cfg.ScryfallBaseURL)
		cards, err := scryfall.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			c.matcherErr = fmt.Errorf("load catalog: %w (run `ssm fetch-catalog` first)", err)
			return
		}
		index := services.NewCatalogIndex(cards)

		aliases := services.DefaultSetAliases()
		if cfg.SetAliasesPath != "" {
			aliases, err = services.LoadSetAliases(cfg.SetAliasesPath)
			if err != nil {
				c.matcherErr = err
				return
			}
		}

		var observer services.MatchObserver = services.NopObserver{}
		if c.flags.verbose {
			observer = services.LogObserver{}
		}
		c.matcher = services.NewLegacyMatcher(index, aliases, observer)
		log.Printf("[Catalog] Loaded %d cards from %d sets", index.Len(), len(index.SetCodes()))
	})
	return c.matcher, c.matcherErr
}

func (c *commandContext) importService() (*services.ImportService, error) {
	matcher, err := c.legacyMatcher()
	if err != nil {
		return nil, err
	}
	coercer := services.NewLegacyCoercer(matcher, services.DefaultCountAliases())
	return services.NewImportService(coercer, c.config.ImportWorkers), nil
}

func (c *commandContext) openDB() (*gorm.DB, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return database.Open(cfg.DBPath)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
