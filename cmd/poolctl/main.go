// Command poolctl runs administrative pool tasks against the database
// without going through the HTTP API.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Black-And-White-Club/betting-pool/app/modules/competition"
	"github.com/Black-And-White-Club/betting-pool/app/modules/leaderboard"
	predictionservice "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/application"
	predictiondb "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/infrastructure/repositories"
	"github.com/Black-And-White-Club/betting-pool/app/modules/standings"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/Black-And-White-Club/betting-pool/config"
	"github.com/Black-And-White-Club/betting-pool/db/bundb"
	"github.com/Black-And-White-Club/betting-pool/pkg/jwt"
	"github.com/Black-And-White-Club/betting-pool/pkg/observability"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

// services are the modules a command needs. Results recorded here are not
// announced on the bus, so commands that store results regrade directly.
type services struct {
	db          *bun.DB
	competition *competition.Module
	standings   *standings.Module
	predictions *predictionservice.PredictionService
	leaderboard *leaderboard.Module
}

func main() {
	app := &cli.App{
		Name:  "poolctl",
		Usage: "prediction pool administration",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
			&cli.BoolFlag{Name: "verbose", Usage: "log service operations to stderr"},
		},
		Commands: []*cli.Command{
			importCommand(),
			exportCommand(),
			recomputeCommand(),
			tokenCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.LoadConfig(c.String("config"))
}

func openServices(c *cli.Context) (*services, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	obs := observability.NewNoop()
	if c.Bool("verbose") {
		obs, err = observability.New(observability.Config{
			Environment: "development",
			LogLevel:    "debug",
			Output:      os.Stderr,
		})
		if err != nil {
			return nil, err
		}
	}

	loc, err := cfg.Import.Location()
	if err != nil {
		return nil, err
	}

	db, err := bundb.Open(c.Context, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}

	comp := competition.NewCompetitionModule(c.Context, db, obs, nil, loc)
	stand := standings.NewStandingsModule(c.Context, db, obs, comp.Repository)
	predRepo := predictiondb.NewRepository(db)
	pred := predictionservice.NewPredictionService(predRepo, comp.Repository, stand.Snapshots, obs.Logger, obs.Metrics, obs.Tracer, db)
	lb := leaderboard.NewLeaderboardModule(c.Context, db, obs, comp.Repository, predRepo, stand.Snapshots)
	pred.SetDeadlineResolver(lb.Service)

	return &services{
		db:          db,
		competition: comp,
		standings:   stand,
		predictions: pred,
		leaderboard: lb,
	}, nil
}

func withServices(fn func(c *cli.Context, s *services) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := openServices(c)
		if err != nil {
			return err
		}
		defer s.db.Close()
		return fn(c, s)
	}
}

func competitionID(c *cli.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.String("competition"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --competition: %w", err)
	}
	return id, nil
}

func asOf(c *cli.Context) time.Time {
	if t := c.Timestamp("as-of"); t != nil {
		return *t
	}
	return time.Now()
}

var competitionFlag = &cli.StringFlag{Name: "competition", Aliases: []string{"c"}, Required: true, Usage: "competition `ID`"}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "import fixtures or standings from a spreadsheet",
		Subcommands: []*cli.Command{
			{
				Name:      "fixtures",
				Usage:     "import fixtures from a .csv or .xlsx file",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{competitionFlag},
				Action: withServices(func(c *cli.Context, s *services) error {
					id, err := competitionID(c)
					if err != nil {
						return err
					}
					path := c.Args().First()
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}

					summary, err := s.competition.Service.ImportFixtures(c.Context, id, filepath.Base(path), data, time.Now())
					if err != nil {
						return err
					}
					fmt.Printf("Imported %d fixture(s), %d with results\n", summary.Created, summary.WithResults)
					if summary.WithResults == 0 {
						return nil
					}
					recomputed, err := s.predictions.RecomputeCompetition(c.Context, id, time.Now())
					if err != nil {
						return err
					}
					fmt.Printf("Recomputed %d prediction(s), %d changed\n", recomputed.Predictions, recomputed.Changed)
					return nil
				}),
			},
			{
				Name:      "standings",
				Usage:     "import a standings snapshot from an .xlsx file",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					competitionFlag,
					&cli.IntFlag{Name: "round", Required: true, Usage: "round the snapshot was taken after"},
				},
				Action: withServices(func(c *cli.Context, s *services) error {
					id, err := competitionID(c)
					if err != nil {
						return err
					}
					path := c.Args().First()
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}

					snap, err := s.standings.Service.ImportSnapshot(c.Context, id, c.Int("round"), filepath.Base(path), data, time.Now())
					if err != nil {
						return err
					}
					fmt.Printf("Recorded standings after round %d (%d teams)\n", snap.Round, len(snap.Positions))
					return nil
				}),
			},
		},
	}
}

func exportCommand() *cli.Command {
	asOfFlag := &cli.TimestampFlag{Name: "as-of", Layout: time.RFC3339, Usage: "rank fixtures started before this time"}
	outFlag := &cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: "output `FILE`"}

	return &cli.Command{
		Name:  "export",
		Usage: "export leaderboard artifacts",
		Subcommands: []*cli.Command{
			{
				Name:  "leaderboard",
				Usage: "write the leaderboard as an .xlsx workbook",
				Flags: []cli.Flag{competitionFlag, asOfFlag, outFlag},
				Action: withServices(func(c *cli.Context, s *services) error {
					id, err := competitionID(c)
					if err != nil {
						return err
					}
					data, err := s.leaderboard.Service.ExportLeaderboard(c.Context, id, asOf(c))
					if err != nil {
						return err
					}
					return os.WriteFile(c.String("out"), data, 0o644)
				}),
			},
			{
				Name:  "chart",
				Usage: "write the cumulative points chart as a PNG",
				Flags: []cli.Flag{competitionFlag, asOfFlag, outFlag},
				Action: withServices(func(c *cli.Context, s *services) error {
					id, err := competitionID(c)
					if err != nil {
						return err
					}
					data, err := s.leaderboard.Service.RenderPointsChart(c.Context, id, asOf(c))
					if err != nil {
						return err
					}
					return os.WriteFile(c.String("out"), data, 0o644)
				}),
			},
		},
	}
}

func recomputeCommand() *cli.Command {
	return &cli.Command{
		Name:  "recompute",
		Usage: "re-grade every prediction of a competition or fixture",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "competition", Aliases: []string{"c"}, Usage: "competition `ID`"},
			&cli.StringFlag{Name: "fixture", Aliases: []string{"f"}, Usage: "fixture `ID`"},
		},
		Action: withServices(func(c *cli.Context, s *services) error {
			var (
				summary *predictionservice.RecomputeSummary
				err     error
			)
			switch {
			case c.IsSet("fixture"):
				id, perr := uuid.Parse(c.String("fixture"))
				if perr != nil {
					return fmt.Errorf("invalid --fixture: %w", perr)
				}
				summary, err = s.predictions.RecomputeFixture(c.Context, id, time.Now())
			case c.IsSet("competition"):
				id, perr := competitionID(c)
				if perr != nil {
					return perr
				}
				summary, err = s.predictions.RecomputeCompetition(c.Context, id, time.Now())
			default:
				return fmt.Errorf("one of --competition or --fixture is required")
			}
			if err != nil {
				return err
			}
			fmt.Printf("Recomputed %d prediction(s) across %d fixture(s), %d changed\n", summary.Predictions, summary.Fixtures, summary.Changed)
			return nil
		}),
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue an API token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "user `ID`"},
			&cli.BoolFlag{Name: "admin", Usage: "grant the admin role"},
			&cli.DurationFlag{Name: "ttl", Usage: "token lifetime; defaults to the configured TTL"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return fmt.Errorf("JWT secret is not configured")
			}
			user := sharedtypes.UserID(c.String("user"))
			if user.IsAnonymous() {
				return fmt.Errorf("--user must not be empty")
			}

			role := jwt.RoleUser
			if c.Bool("admin") {
				role = jwt.RoleAdmin
			}
			token, err := jwt.NewService(cfg.JWT.Secret, cfg.JWT.DefaultTTL).GenerateToken(user.String(), role, c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}
