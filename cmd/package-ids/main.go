// Command package-ids prints every package id for operators wiring the consumer app.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"quiz-admin/internal/config"
	"quiz-admin/internal/database"
	"quiz-admin/internal/models"
	"quiz-admin/internal/repository"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{})
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	loadEnvFile(log)
	cfg := config.Load()
	cfg.Database.LogQueries = false

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	packages, err := repository.NewPackageRepository(db).FindAll(ctx)
	if err != nil {
		log.Fatalf("Failed to load packages: %v", err)
	}

	if err := render(os.Stdout, packages); err != nil {
		log.Fatalf("Failed to print packages: %v", err)
	}
}

// render writes a table of packages ordered by id, followed by the id lists.
func render(w io.Writer, packages []models.Package) error {
	if len(packages) == 0 {
		_, err := fmt.Fprintln(w, "No packages found")
		return err
	}

	sorted := append([]models.Package(nil), packages...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME (RU)\tNAME (KZ)\tACTIVE")
	ids := make([]uint, 0, len(sorted))
	var active []string
	for _, p := range sorted {
		ids = append(ids, p.ID)
		flag := "no"
		if p.IsActive {
			flag = "yes"
			active = append(active, strconv.FormatUint(uint64(p.ID), 10))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, displayName(p.NameRU, p.Name), displayName(p.NameKZ, p.Name), flag)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	all := make([]string, len(ids))
	for i, id := range ids {
		all[i] = strconv.FormatUint(uint64(id), 10)
	}

	fmt.Fprintf(w, "\nAll ids: %s\n", strings.Join(all, ", "))
	if len(active) > 0 {
		fmt.Fprintf(w, "Active ids: %s\n", strings.Join(active, ", "))
	} else {
		fmt.Fprintln(w, "Active ids: none")
	}

	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\nJSON:\n%s\n", data)
	return err
}

func displayName(localized, fallback string) string {
	if localized != "" {
		return localized
	}
	if fallback != "" {
		return fallback
	}
	return "-"
}

func loadEnvFile(log *logrus.Logger) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "dev"
	}

	for _, name := range []string{".env." + env, ".env"} {
		envFile := filepath.Join("envs", name)
		if err := godotenv.Load(envFile); err == nil {
			return
		}
	}
	log.Warn("No environment file found, using process environment")
}
