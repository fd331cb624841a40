// cmd/tools/catalog-updater/commands.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"yojanamitra/internal/catalog"
	"yojanamitra/internal/common/config"
	"yojanamitra/internal/common/database"
	"yojanamitra/internal/common/logger"
	"yojanamitra/internal/common/validation"
	"yojanamitra/internal/models"
	"yojanamitra/pkg/catalogfile"
)

const commandTimeout = 2 * time.Minute

// loadOrEmpty reads the catalog at path, starting a new one when the file
// does not exist yet.
func loadOrEmpty(path string) (*catalogfile.Document, error) {
	doc, _, err := catalogfile.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return &catalogfile.Document{Schemes: []models.Scheme{}}, nil
	}
	return doc, err
}

func stamp(doc *catalogfile.Document) {
	doc.LastUpdated = time.Now().UTC().Format("2006-01-02")
}

func runAdd(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("add", pflag.ContinueOnError)
	path := fs.String("path", defaultCatalogPath, "Catalog file to update")
	id := fs.String("id", "", "Scheme id (e.g. pm-kisan)")
	title := fs.String("title", "", "Scheme title")
	description := fs.String("description", "", "Short description")
	state := fs.String("state", models.StateAll, "State the scheme applies to, or All")
	incomeMax := fs.Float64("income-max", 0, "Annual income limit in rupees, 0 for none")
	castes := fs.StringSlice("caste", nil, "Eligible caste categories (e.g. SC,ST,OBC)")
	student := fs.Bool("student", false, "Scheme is for students")
	education := fs.String("education", "", "Required education level")
	docs := fs.StringSlice("docs", nil, "Required documents")
	portal := fs.String("portal-url", "", "Official portal URL")
	apply := fs.String("apply-url", "", "Application URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	scheme := models.Scheme{
		ID:                strings.TrimSpace(*id),
		Title:             strings.TrimSpace(*title),
		Description:       *description,
		State:             *state,
		RequiredDocs:      *docs,
		OfficialPortalURL: *portal,
		ApplicationURL:    *apply,
		LastReviewed:      time.Now().UTC().Format("2006-01-02"),
		Eligibility: models.EligibilityRules{
			Caste:     *castes,
			Student:   *student,
			Education: *education,
		},
	}
	if *incomeMax > 0 {
		scheme.Eligibility.IncomeMax = incomeMax
	}

	result, err := validation.ValidateScheme(scheme)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("invalid scheme: %s", strings.Join(result.GetErrorMessages(), "; "))
	}

	doc, err := loadOrEmpty(*path)
	if err != nil {
		return err
	}
	replaced := doc.Upsert(scheme)
	stamp(doc)
	if err := catalogfile.Save(*path, doc); err != nil {
		return err
	}

	verb := "Added"
	if replaced {
		verb = "Updated"
	}
	fmt.Fprintf(out, "%s scheme: %s (%d in catalog)\n", verb, scheme.ID, len(doc.Schemes))
	return nil
}

func runValidate(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("validate", pflag.ContinueOnError)
	path := fs.String("path", defaultCatalogPath, "Catalog file to check")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		return err
	}
	raws, err := catalogfile.RawEntries(data, catalogfile.FormatFor(*path))
	if err != nil {
		return err
	}

	seen := make(map[string]int, len(raws))
	invalid := 0
	for i, raw := range raws {
		var problems []string

		result, err := validation.ValidateScheme(raw)
		if err != nil {
			problems = append(problems, err.Error())
		} else {
			problems = append(problems, result.GetErrorMessages()...)
		}

		var scheme models.Scheme
		if err := json.Unmarshal(raw, &scheme); err == nil {
			if scheme.EligibilityErr != nil {
				problems = append(problems, scheme.EligibilityErr.Error())
			}
			if first, dup := seen[scheme.ID]; dup && scheme.ID != "" {
				problems = append(problems, fmt.Sprintf("duplicate id, first seen at entry %d", first))
			} else {
				seen[scheme.ID] = i
			}
		}

		if len(problems) > 0 {
			invalid++
			fmt.Fprintf(out, "  entry %d (%s): %s\n", i, scheme.ID, strings.Join(problems, "; "))
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d entries are invalid", invalid, len(raws))
	}
	fmt.Fprintf(out, "Catalog is valid: %d schemes\n", len(raws))
	return nil
}

func runImportCSV(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("import-csv", pflag.ContinueOnError)
	path := fs.String("path", defaultCatalogPath, "Catalog file to update")
	csvPath := fs.String("csv", "", "CSV export with a header row")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *csvPath == "" {
		fs.Usage()
		return errors.New("--csv is required")
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		return err
	}
	defer f.Close()

	schemes, entryErrs, err := catalogfile.ReadCSV(f)
	if err != nil {
		return err
	}
	for _, e := range entryErrs {
		fmt.Fprintf(out, "  skipped row: %v\n", e)
	}

	doc, err := loadOrEmpty(*path)
	if err != nil {
		return err
	}
	added, updated := 0, 0
	for _, s := range schemes {
		if doc.Upsert(s) {
			updated++
		} else {
			added++
		}
	}
	stamp(doc)
	if err := catalogfile.Save(*path, doc); err != nil {
		return err
	}

	fmt.Fprintf(out, "Imported %d schemes (%d added, %d updated, %d rows reported)\n",
		len(schemes), added, updated, len(entryErrs))
	return nil
}

// loadConfig reads the service configuration, from an explicit file when
// one is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// loadValid reads the catalog file and refuses to publish it while any
// entry is unusable.
func loadValid(path string) ([]models.Scheme, error) {
	doc, entryErrs, err := catalogfile.Load(path)
	if err != nil {
		return nil, err
	}
	if len(entryErrs) > 0 {
		return nil, fmt.Errorf("catalog has %d invalid entries, run validate first: %v", len(entryErrs), entryErrs[0])
	}
	return doc.Schemes, nil
}

func runImportPostgres(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("import-postgres", pflag.ContinueOnError)
	path := fs.String("path", defaultCatalogPath, "Catalog file to import")
	cfgPath := fs.String("config", "", "Config file (defaults to configs/config.yaml)")
	table := fs.String("table", "", "Target table (defaults to catalog.table)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *table == "" {
		*table = cfg.Catalog.Table
	}
	schemes, err := loadValid(*path)
	if err != nil {
		return err
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	provider := catalog.NewPostgresProvider(pg.DB, *table, logger.NewNoOpLogger())
	if err := provider.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("create table %s: %w", *table, err)
	}
	if err := provider.Upsert(ctx, schemes); err != nil {
		return err
	}

	fmt.Fprintf(out, "Upserted %d schemes into %s\n", len(schemes), *table)
	return nil
}

func runIndexElasticsearch(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("index-elasticsearch", pflag.ContinueOnError)
	path := fs.String("path", defaultCatalogPath, "Catalog file to index")
	cfgPath := fs.String("config", "", "Config file (defaults to configs/config.yaml)")
	index := fs.String("index", "", "Target index (defaults to catalog.index)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *index == "" {
		*index = cfg.Catalog.Index
	}
	schemes, err := loadValid(*path)
	if err != nil {
		return err
	}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	provider := catalog.NewElasticsearchProvider(es.Client, *index, logger.NewNoOpLogger())
	if err := provider.Index(ctx, schemes); err != nil {
		return err
	}

	fmt.Fprintf(out, "Indexed %d schemes into %s\n", len(schemes), *index)
	return nil
}

func runRefreshCache(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("refresh-cache", pflag.ContinueOnError)
	cfgPath := fs.String("config", "", "Config file (defaults to configs/config.yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	cfg.Catalog.CacheEnabled = true

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	built, err := catalog.New(ctx, cfg, logger.NewNoOpLogger())
	if err != nil {
		return err
	}
	defer built.Close()

	n, err := built.Cache.Warm(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Cached %d schemes from %s\n", n, cfg.Catalog.Source)
	return nil
}
