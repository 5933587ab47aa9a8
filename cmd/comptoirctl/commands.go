package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/comptoir-labs/comptoir/internal/config"
	"github.com/comptoir-labs/comptoir/internal/conversation"
	"github.com/comptoir-labs/comptoir/internal/domain"
	"github.com/comptoir-labs/comptoir/internal/gate"
	"github.com/comptoir-labs/comptoir/internal/health"
	"github.com/comptoir-labs/comptoir/internal/i18n"
	"github.com/comptoir-labs/comptoir/internal/llm"
	"github.com/comptoir-labs/comptoir/internal/pdf"
	"github.com/comptoir-labs/comptoir/internal/persona"
	"github.com/comptoir-labs/comptoir/internal/plan"
	"github.com/comptoir-labs/comptoir/internal/prompt"
	"github.com/comptoir-labs/comptoir/internal/session"
	"github.com/comptoir-labs/comptoir/internal/store"
	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func loadRoster(path string) (*persona.Roster, error) {
	if path == "" {
		path = os.Getenv("PERSONAS_PATH")
	}
	if path == "" {
		return persona.LoadExample()
	}
	return persona.Load(path)
}

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Work with the marketing plan documents",
	}

	var lang, out string
	pdfCmd := &cobra.Command{
		Use:   "pdf",
		Short: "Render the marketing plan as a PDF",
		RunE: func(cmd *cobra.Command, _ []string) error {
			book, err := plan.Default()
			if err != nil {
				return err
			}
			p := book.Get(lang)
			if out == "" {
				out = "marketing-plan-" + p.Language + ".pdf"
			}

			if out == "-" {
				return pdf.New().Render(cmd.OutOrStdout(), p)
			}
			data, err := pdf.New().Bytes(p)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes, %s)\n", out, len(data), i18n.Name(p.Language))
			return nil
		},
	}
	pdfCmd.Flags().StringVar(&lang, "lang", i18n.Default, "language code (en, fr, de)")
	pdfCmd.Flags().StringVarP(&out, "out", "o", "", `output file, "-" for stdout`)

	langsCmd := &cobra.Command{
		Use:   "langs",
		Short: "List languages with a plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			book, err := plan.Default()
			if err != nil {
				return err
			}
			for _, code := range book.Languages() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", code, i18n.Name(code))
			}
			return nil
		},
	}

	cmd.AddCommand(pdfCmd, langsCmd)
	return cmd
}

func newPromptCmd() *cobra.Command {
	var (
		rosterPath, personaID, framing, lang, verbosity, jobFile string
		sections                                                 bool
	)
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the system instruction a turn would send",
		RunE: func(cmd *cobra.Command, _ []string) error {
			roster, err := loadRoster(rosterPath)
			if err != nil {
				return err
			}
			p, err := roster.Get(personaID)
			if err != nil {
				return err
			}

			in := prompt.Input{
				PersonaName: p.Name,
				Guidance:    p.Guidance,
				Content:     p.Content,
				Language:    lang,
			}
			switch domain.Verbosity(verbosity) {
			case domain.VerbosityConcise, domain.VerbosityFull:
				in.Verbosity = domain.Verbosity(verbosity)
			default:
				return fmt.Errorf("--verbosity must be %q or %q", domain.VerbosityConcise, domain.VerbosityFull)
			}
			f, ok := p.Framing(framing)
			if !ok && framing != "" {
				return fmt.Errorf("persona %s has no framing %q", p.ID, framing)
			}
			if ok {
				in.Framing = &f
			}
			if jobFile != "" {
				data, err := os.ReadFile(jobFile)
				if err != nil {
					return fmt.Errorf("read job file: %w", err)
				}
				in.JobContext = string(data)
			}

			if sections {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(prompt.Sections(in), "\n"))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), prompt.Assemble(in))
			return nil
		},
	}
	cmd.Flags().StringVar(&rosterPath, "personas", "", "persona roster file (default: $PERSONAS_PATH or the example roster)")
	cmd.Flags().StringVar(&personaID, "persona", "", "persona id (default: first in roster)")
	cmd.Flags().StringVar(&framing, "framing", "", "framing label (default: persona default)")
	cmd.Flags().StringVar(&lang, "lang", i18n.Default, "response language")
	cmd.Flags().StringVar(&verbosity, "verbosity", string(domain.VerbosityConcise), "concise or full")
	cmd.Flags().StringVar(&jobFile, "job-file", "", "file with a job description")
	cmd.Flags().BoolVar(&sections, "sections", false, "list included sections instead of the text")
	return cmd
}

func newPersonasCmd() *cobra.Command {
	var rosterPath string
	cmd := &cobra.Command{
		Use:   "personas",
		Short: "Validate the persona roster and list its personas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			roster, err := loadRoster(rosterPath)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tFRAMINGS\tDEFAULT\tCONTENT")
			for _, p := range roster.All() {
				labels := make([]string, len(p.Framings))
				for i, f := range p.Framings {
					labels[i] = f.Label
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d chars\n", p.ID, p.Name, strings.Join(labels, ","), p.DefaultFraming, len([]rune(p.Content)))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&rosterPath, "personas", "", "persona roster file (default: $PERSONAS_PATH or the example roster)")
	return cmd
}

func newLeadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Inspect access requests left by visitors",
	}

	var dbPath string
	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the newest access requests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbPath == "" {
				dbPath = os.Getenv("DB_PATH")
			}
			if dbPath == "" {
				return errors.New("--db or DB_PATH is required")
			}
			repo, err := store.NewSQLite(dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()

			leads, err := repo.ListAccessRequests(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printLeads(cmd.OutOrStdout(), leads)
		},
	}
	listCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default: $DB_PATH)")
	listCmd.Flags().IntVar(&limit, "limit", 50, "maximum rows")

	cmd.AddCommand(listCmd)
	return cmd
}

func printLeads(w io.Writer, leads []*domain.AccessRequest) error {
	if len(leads) == 0 {
		_, err := fmt.Fprintln(w, "No access requests.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tEMAIL\tPERSONA\tLANG\tVISITOR")
	for _, l := range leads {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.CreatedAt.UTC().Format(time.RFC3339), l.Email, l.PersonaID, l.Language, l.VisitorID)
	}
	return tw.Flush()
}

func newAskCmd() *cobra.Command {
	var rosterPath, personaID, framing, lang, provider string
	var unlocked bool
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Run one conversation turn against the configured model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := loadRoster(rosterPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			gen, err := askGenerator(ctx, provider)
			if err != nil {
				return err
			}

			sessions := session.NewManager(session.NewMemory(), nil)
			const key = "cli:ask"
			if unlocked {
				sess, err := sessions.GetOrCreate(ctx, key)
				if err != nil {
					return err
				}
				sess.Unlocked = true
				if err := sessions.Save(ctx, sess); err != nil {
					return err
				}
			}

			model := os.Getenv("MODEL_NAME")
			if model == "" {
				model = config.DefaultModel
			}
			conv := conversation.NewService(sessions, roster, gen, conversation.Config{
				Model:  model,
				Policy: gate.DefaultPolicy(),
			}, nil, nil)

			out := cmd.OutOrStdout()
			for ev, err := range conv.Turn(ctx, conversation.TurnInput{
				SessionKey: key,
				PersonaID:  personaID,
				Framing:    framing,
				Language:   lang,
				Message:    strings.Join(args, " "),
				Channel:    "cli",
			}) {
				if err != nil {
					return err
				}
				if ev.Result != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "\n[%s, %d tokens max]\n", ev.Result.Tier.Verbosity, ev.Result.Tier.MaxResponseTokens)
					continue
				}
				fmt.Fprint(out, ev.Chunk)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rosterPath, "personas", "", "persona roster file (default: $PERSONAS_PATH or the example roster)")
	cmd.Flags().StringVar(&personaID, "persona", "", "persona id (default: first in roster)")
	cmd.Flags().StringVar(&framing, "framing", "", "framing label")
	cmd.Flags().StringVar(&lang, "lang", i18n.Default, "response language")
	cmd.Flags().StringVar(&provider, "provider", "", "gemini or mock (default: $LLM_PROVIDER or gemini)")
	cmd.Flags().BoolVar(&unlocked, "unlocked", false, "use the unlocked tier")
	return cmd
}

func askGenerator(ctx context.Context, provider string) (llm.Generator, error) {
	if provider == "" {
		provider = os.Getenv("LLM_PROVIDER")
	}
	switch strings.ToLower(provider) {
	case config.ProviderMock:
		return llm.NewMock(), nil
	case "", config.ProviderGemini:
		key := os.Getenv("GEMINI_API_KEY")
		if key == "" {
			key = os.Getenv("GOOGLE_API_KEY")
		}
		return llm.NewGemini(ctx, key, nil)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

func newHealthCmd() *cobra.Command {
	var addr, service string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Query the server's gRPC health endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = os.Getenv("GRPC_HEALTH_ADDR")
			}
			if addr == "" {
				return errors.New("--addr or GRPC_HEALTH_ADDR is required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			status, err := health.Check(ctx, addr, service)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			if status != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("%s is %s", addr, status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "gRPC health address (default: $GRPC_HEALTH_ADDR)")
	cmd.Flags().StringVar(&service, "service", health.ServiceName, "service name to check")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	return cmd
}
