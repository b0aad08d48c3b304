// Comando verify corre el verificador de conciliación fuera de banda contra la
// base del motor y reporta las violaciones encontradas. Sale con código 1 si
// detecta drift, pensado para cron o CI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/Manufactura-api/internal/application/reconciliation"
	"github.com/jhoicas/Manufactura-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Manufactura-api/pkg/config"
	"github.com/jhoicas/Manufactura-api/pkg/logger"
)

func main() {
	companyID := flag.String("company", "", "ID de la empresa a verificar (requerido)")
	asJSON := flag.Bool("json", false, "emitir el reporte completo como JSON a stdout")
	timeout := flag.Duration("timeout", 2*time.Minute, "timeout total de la corrida")
	flag.Parse()

	if *companyID == "" {
		fmt.Fprintln(os.Stderr, "uso: verify -company <company-id> [-json]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info", Service: "verify"})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	verifier := reconciliation.NewVerifier(postgres.NewReconciliationRepository(pool))
	report, err := verifier.Run(ctx, *companyID)
	if err != nil {
		log.Fatal().Err(err).Msg("corrida del verificador")
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatal().Err(err).Msg("serializar reporte")
		}
	} else {
		for _, v := range report.Violations {
			log.Warn().Str("check", v.Check).Msg(v.Detail)
		}
	}

	if report.Clean() {
		log.Info().
			Str("company_id", report.CompanyID).
			Int("checks", report.Checks).
			Msg("conciliación limpia")
		return
	}

	log.Error().
		Str("company_id", report.CompanyID).
		Int("violations", len(report.Violations)).
		Msg("se detectó drift de conciliación")
	os.Exit(1)
}
