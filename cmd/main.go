package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"

	"gdata/internal/caldav"
	"gdata/internal/export"
	"gdata/internal/google"
	"gdata/internal/mirror"
	"gdata/internal/models"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "gdata",
		Usage: "Work with Google Contacts and Google Calendar from the command line.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "account", EnvVars: []string{"GOOGLE_ACCOUNT"}, Usage: "Account whose token-<account>.json is used. Defaults to the only saved account."},
			&cli.StringFlag{Name: "log-level", EnvVars: []string{"LOG_LEVEL"}, Value: "info", Usage: "debug, info, warn or error."},
		},
		Commands: []*cli.Command{
			authCommand(),
			accountsCommand(),
			contactsCommand(),
			groupsCommand(),
			calendarsCommand(),
			eventsCommand(),
			tokenInfoCommand(),
			exportCommand(),
			mirrorCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with a Google account and save its token.",
		Action: func(c *cli.Context) error {
			logger := setupLogger(c.String("log-level"))
			logger.Info("Starting Google authentication flow.")

			config, err := google.GetOAuthConfig(os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"))
			if err != nil {
				return fmt.Errorf("failed to get google oauth config: %w", err)
			}

			authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Fprintf(c.App.Writer, "Go to the following link in your browser then type the "+
				"authorization code: \n%v\n", authURL)

			fmt.Fprint(c.App.Writer, "Enter Authorization Code: ")
			reader := bufio.NewReader(os.Stdin)
			authCode, _ := reader.ReadString('\n')
			authCode = strings.TrimSpace(authCode)

			token, err := google.TokenFromWeb(c.Context, config, authCode)
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}

			account := c.String("account")
			if account == "" {
				account = "default"
			}
			tokenFile := google.TokenFile(account)
			if err := google.SaveToken(tokenFile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			logger.Info("Successfully authenticated and saved token.", "file", tokenFile)
			return nil
		},
	}
}

func accountsCommand() *cli.Command {
	return &cli.Command{
		Name:  "accounts",
		Usage: "List the accounts that have a saved token.",
		Action: func(c *cli.Context) error {
			accounts, err := google.GetTokenAccounts(".")
			if err != nil {
				return fmt.Errorf("failed to list token files: %w", err)
			}
			for _, account := range accounts {
				fmt.Fprintln(c.App.Writer, account)
			}
			return nil
		},
	}
}

func contactsCommand() *cli.Command {
	return &cli.Command{
		Name:  "contacts",
		Usage: "List contacts.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Usage: "Full-text filter."},
			&cli.StringFlag{Name: "group", Usage: "Only contacts in the group with this id."},
		},
		Action: func(c *cli.Context) error {
			client, _, err := newGoogleClient(c)
			if err != nil {
				return err
			}
			contacts, err := client.Contacts(c.Context, &google.FeedOptions{Query: c.String("query"), Group: c.String("group")})
			if err != nil {
				return fmt.Errorf("failed to list contacts: %w", err)
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			for _, contact := range contacts {
				email := ""
				if len(contact.Emails) > 0 {
					email = contact.Emails[0].Address
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", contact.FullName(), email, contact.ID)
			}
			return w.Flush()
		},
	}
}

func groupsCommand() *cli.Command {
	return &cli.Command{
		Name:  "groups",
		Usage: "List contact groups.",
		Action: func(c *cli.Context) error {
			client, _, err := newGoogleClient(c)
			if err != nil {
				return err
			}
			groups, err := client.Groups(c.Context, nil)
			if err != nil {
				return fmt.Errorf("failed to list groups: %w", err)
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			for _, g := range groups {
				fmt.Fprintf(w, "%s\t%s\n", g.Title, g.ID)
			}
			return w.Flush()
		},
	}
}

func calendarsCommand() *cli.Command {
	return &cli.Command{
		Name:  "calendars",
		Usage: "List calendars.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "min-access-role", Usage: "e.g. owner or writer."},
		},
		Action: func(c *cli.Context) error {
			client, _, err := newGoogleClient(c)
			if err != nil {
				return err
			}
			calendars, err := client.Calendars(c.Context, &google.CalendarListOptions{MinAccessRole: c.String("min-access-role")})
			if err != nil {
				return fmt.Errorf("failed to list calendars: %w", err)
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			for _, cal := range calendars {
				fmt.Fprintf(w, "%s\t%s\t%s\n", cal.Summary, cal.TimeZone, cal.ID)
			}
			return w.Flush()
		},
	}
}

func calendarFlag() cli.Flag {
	return &cli.StringFlag{Name: "calendar", Value: "primary", Usage: "Calendar id."}
}

func daysFlag() cli.Flag {
	return &cli.IntFlag{Name: "days", Value: 7, Usage: "How many days ahead to look."}
}

func upcoming(c *cli.Context) *google.EventListOptions {
	now := time.Now()
	return &google.EventListOptions{
		TimeMin:      now,
		TimeMax:      now.AddDate(0, 0, c.Int("days")),
		SingleEvents: true,
		OrderBy:      "startTime",
	}
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "List upcoming events of a calendar.",
		Flags: []cli.Flag{calendarFlag(), daysFlag()},
		Action: func(c *cli.Context) error {
			client, _, err := newGoogleClient(c)
			if err != nil {
				return err
			}
			events, err := client.Events(c.Context, &models.Calendar{ID: c.String("calendar")}, upcoming(c))
			if err != nil {
				return fmt.Errorf("failed to list events: %w", err)
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			for _, ev := range events {
				start := ev.Start.Time.Format(time.RFC3339)
				if ev.Start.AllDay {
					start = ev.Start.Time.Format(time.DateOnly)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", start, ev.Summary, ev.ID)
			}
			return w.Flush()
		},
	}
}

func tokenInfoCommand() *cli.Command {
	return &cli.Command{
		Name:  "tokeninfo",
		Usage: "Describe the current access token.",
		Action: func(c *cli.Context) error {
			client, _, err := newGoogleClient(c)
			if err != nil {
				return err
			}
			tok, err := client.TokenInfo(c.Context)
			if err != nil {
				return fmt.Errorf("failed to get token info: %w", err)
			}
			if tok == nil {
				return fmt.Errorf("the access token was rejected, run the 'auth' command again")
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "email\t%s\n", tok.Email)
			fmt.Fprintf(w, "issued to\t%s\n", tok.IssuedTo)
			fmt.Fprintf(w, "access type\t%s\n", tok.AccessType)
			fmt.Fprintf(w, "scopes\t%s\n", strings.Join(tok.Scopes, " "))
			fmt.Fprintf(w, "expires in\t%s\n", tok.ExpiresIn(time.Now()).Round(time.Second))
			return w.Flush()
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export contacts as vCard or events as iCalendar.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "vcf", Usage: "vcf (contacts) or ics (events)."},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "File to write, stdout when empty."},
			calendarFlag(),
			daysFlag(),
		},
		Action: func(c *cli.Context) error {
			client, logger, err := newGoogleClient(c)
			if err != nil {
				return err
			}

			var out io.Writer = c.App.Writer
			if path := c.String("output"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			switch c.String("format") {
			case "vcf":
				contacts, err := client.Contacts(c.Context, nil)
				if err != nil {
					return fmt.Errorf("failed to list contacts: %w", err)
				}
				if err := export.WriteVCF(out, contacts); err != nil {
					return err
				}
				logger.Info("Exported contacts.", "count", len(contacts))
			case "ics":
				events, err := client.Events(c.Context, &models.Calendar{ID: c.String("calendar")}, upcoming(c))
				if err != nil {
					return fmt.Errorf("failed to list events: %w", err)
				}
				if err := export.WriteICS(out, events, time.Now()); err != nil {
					return err
				}
				logger.Info("Exported events.", "count", len(events))
			default:
				return fmt.Errorf("unknown export format %q", c.String("format"))
			}
			return nil
		},
	}
}

func mirrorCommand() *cli.Command {
	return &cli.Command{
		Name:  "mirror",
		Usage: "Mirror a Google calendar into a CalDAV calendar.",
		Flags: []cli.Flag{
			calendarFlag(),
			daysFlag(),
			&cli.StringFlag{Name: "state", Value: mirror.DefaultStateFile, Usage: "Mirror state file."},
			&cli.BoolFlag{Name: "dry-run", Usage: "Log what would be written without making changes."},
			&cli.IntFlag{Name: "watch", Value: 300, Usage: "Run every N seconds instead of once."},
		},
		Action: func(c *cli.Context) error {
			client, logger, err := newGoogleClient(c)
			if err != nil {
				return err
			}
			if c.Bool("dry-run") {
				logger.Info("Performing a dry run. No changes will be made.")
			}

			insecure, err := insecureSkipVerify()
			if err != nil {
				return err
			}
			target, err := caldav.NewClient(c.Context, logger, caldav.Config{
				Endpoint:           os.Getenv("CALDAV_URL"),
				Username:           os.Getenv("CALDAV_USERNAME"),
				Password:           os.Getenv("CALDAV_PASSWORD"),
				CalendarName:       os.Getenv("CALDAV_CALENDAR_NAME"),
				InsecureSkipVerify: insecure,
			})
			if err != nil {
				return fmt.Errorf("failed to create caldav client: %w", err)
			}

			m, err := mirror.New(logger, client, target, &models.Calendar{ID: c.String("calendar")}, mirror.Options{
				StateFile: c.String("state"),
				DryRun:    c.Bool("dry-run"),
				Window:    time.Duration(c.Int("days")) * 24 * time.Hour,
			})
			if err != nil {
				return fmt.Errorf("failed to create mirror: %w", err)
			}

			// --watch takes precedence over a single run.
			if c.IsSet("watch") {
				err := m.Watch(c.Context, time.Duration(c.Int("watch"))*time.Second)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}

			logger.Info("Running a single mirror cycle.")
			if _, err := m.Run(c.Context); err != nil {
				return fmt.Errorf("mirror cycle failed: %w", err)
			}
			return nil
		},
	}
}

// newGoogleClient builds a client from GOOGLE_ACCESS_TOKEN, or from the saved
// token of the selected account, refreshing it when it has expired.
func newGoogleClient(c *cli.Context) (*google.Client, *slog.Logger, error) {
	logger := setupLogger(c.String("log-level"))

	bearer, err := bearerToken(c.Context, c.String("account"))
	if err != nil {
		return nil, nil, err
	}
	insecure, err := insecureSkipVerify()
	if err != nil {
		return nil, nil, err
	}

	client := google.NewClient(bearer, google.Config{
		Logger:    logger,
		Transport: google.NewHTTPTransport(google.TransportConfig{InsecureSkipVerify: insecure}),
	})
	return client, logger, nil
}

func bearerToken(ctx context.Context, account string) (string, error) {
	if token := os.Getenv("GOOGLE_ACCESS_TOKEN"); token != "" {
		return token, nil
	}

	account, err := google.ResolveAccount(".", account)
	if err != nil {
		return "", err
	}
	tokenFile := google.TokenFile(account)
	tok, err := google.TokenFromFile(tokenFile)
	if err != nil {
		return "", fmt.Errorf("could not read %s, did you run the auth command? %w", tokenFile, err)
	}

	config, err := google.GetOAuthConfig(os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"))
	if err != nil {
		return "", fmt.Errorf("failed to get google oauth config: %w", err)
	}
	return google.BearerFromSource(config.TokenSource(ctx, tok))
}

func insecureSkipVerify() (bool, error) {
	v := os.Getenv("INSECURE_SKIP_VERIFY")
	if v == "" {
		return false, nil
	}
	insecure, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid INSECURE_SKIP_VERIFY value %q: %w", v, err)
	}
	return insecure, nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
