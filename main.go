package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tabtalk/internal/browser"
	"tabtalk/internal/chat"
	"tabtalk/internal/config"
	"tabtalk/internal/content"
	"tabtalk/internal/dispatch"
	"tabtalk/internal/formatter"
	"tabtalk/internal/popup"
	"tabtalk/internal/prompt"
	"tabtalk/internal/scraper"
	_ "tabtalk/internal/sites/generic"
	_ "tabtalk/internal/sites/leetcode"
	_ "tabtalk/internal/sites/youtube"
	"tabtalk/internal/telemetry"
	"tabtalk/internal/timecode"
)

var version = "dev"

var (
	configPath   string
	outputFormat string
	outputFile   string
	inputFile    string
	site         string
	mode         string
	screenshot   bool
	question     string
	timeout      time.Duration
	headers      []string
	waitFor      string
	waitTarget   string
	pollTimeout  time.Duration
	pollInterval time.Duration
	showUI       bool
	stealthMode  bool
	proxyURL     string
	verbose      bool
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tabtalk [URL]",
		Short:   "Extract a page into a chat-ready prompt",
		Version: version,
		Long: `tabtalk opens a page in a headless browser, picks an extraction strategy
by address (video transcript, coding problem or generic article) and prints
the result as a chat prompt or in another format. With --ask it sends the
prompt to an OpenAI-compatible model and streams the answer.`,
		Example: `  # Print a prompt for a video transcript
  tabtalk "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

  # Save a problem statement and solution as markdown
  tabtalk -o two-sum.md https://leetcode.com/problems/two-sum/

  # Extract an article with readability and ask about it
  tabtalk --mode readability --ask "Summarize this" https://go.dev/blog/

  # Extract from a saved page without launching a browser
  tabtalk --file page.html https://example.com/post

  # Wait for the player before reading, with a language header
  tabtalk -w element -T ytd-watch-flexy -H "Accept-Language: en-US" "https://www.youtube.com/watch?v=dQw4w9WgXcQ"`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				os.Exit(0)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
		RunE:         run,
		SilenceUsage: true,
	}

	timeCmd := &cobra.Command{
		Use:          "time URL",
		Short:        "Print the current playback position of a video page",
		Args:         cobra.ExactArgs(1),
		RunE:         runTime,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(timeCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (YAML or JSON)")
	pf.DurationVarP(&timeout, "timeout", "t", 30*time.Second, "Page load timeout")
	pf.StringSliceVarP(&headers, "header", "H", []string{}, "HTTP headers (can be used multiple times)")
	pf.StringVarP(&waitFor, "wait-for", "w", "load", "Wait strategy (load, element, time)")
	pf.StringVarP(&waitTarget, "wait-target", "T", "", "Wait target (selector for 'element' strategy, milliseconds for 'time' strategy)")
	pf.DurationVar(&pollTimeout, "poll-timeout", 5*time.Second, "How long to wait for each page element")
	pf.DurationVar(&pollInterval, "poll-interval", 100*time.Millisecond, "How often to look for a page element")
	pf.BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	pf.BoolVar(&stealthMode, "stealth", false, "Patch browser tabs against headless detection")
	pf.StringVarP(&proxyURL, "proxy", "p", "", "Proxy URL (e.g. http://127.0.0.1:7890), defaults to TABTALK_PROXY env var")
	pf.StringVar(&inputFile, "file", "", "Read a saved HTML page instead of launching a browser")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	f := rootCmd.Flags()
	f.StringVarP(&outputFormat, "format", "f", "prompt", "Output format ("+strings.Join(formatter.Formats, ", ")+")")
	f.StringVarP(&outputFile, "output", "o", "", "Output file path (format inferred from extension if -f not specified)")
	f.StringVar(&site, "site", "", "Force an extraction strategy ("+strings.Join(scraper.Names(), ", ")+")")
	f.StringVar(&mode, "mode", "structured", "Generic page extraction mode (structured, readability)")
	f.BoolVar(&screenshot, "screenshot", false, "Attach a viewport screenshot to generic pages")
	f.StringVar(&question, "ask", "", "Send the prompt and this question to the chat model")

	return rootCmd
}

// resolveConfig layers explicitly set flags over env, file and defaults.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath, os.Getenv)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("proxy") {
		cfg.Proxy = proxyURL
	}
	if flags.Changed("showui") {
		cfg.ShowUI = showUI
	}
	if flags.Changed("stealth") {
		cfg.Stealth = stealthMode
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("header") {
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for k, v := range parseHeaders(headers) {
			cfg.Headers[k] = v
		}
	}
	if flags.Changed("wait-for") {
		cfg.WaitFor = waitFor
	}
	if flags.Changed("wait-target") {
		cfg.WaitTarget = waitTarget
	}
	if flags.Changed("poll-timeout") {
		cfg.PollTimeout = pollTimeout
	}
	if flags.Changed("poll-interval") {
		cfg.PollInterval = pollInterval
	}
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("screenshot") {
		cfg.Screenshot = screenshot
	}
	if flags.Changed("format") {
		cfg.Format = outputFormat
	} else if outputFile != "" {
		if inferred := formatter.InferFromExtension(outputFile); inferred != "" {
			cfg.Format = inferred
		}
	}
	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if !formatter.Valid(cfg.Format) {
		return fmt.Errorf("invalid output format: %s", cfg.Format)
	}

	target := normalizeURL(args[0])
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := extract(ctx, cfg, target)
	if err != nil {
		return err
	}

	out, err := formatter.Format(c, cfg.Format)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
		log.Info().Str("path", outputFile).Str("format", cfg.Format).Msg("output written")
	} else if question == "" {
		fmt.Println(out)
	}

	if question != "" {
		return ask(ctx, cfg, c)
	}
	return nil
}

func runTime(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession(cfg, cfg.Proxy)
	if err != nil {
		return err
	}
	defer s.Close()

	target := normalizeURL(args[0])
	if _, err := s.loader.Load(ctx, target); err != nil && !errors.Is(err, popup.ErrNoContent) {
		return errors.New(popup.UserMessage(err))
	}
	pos, err := s.loader.CurrentTime(ctx)
	if err != nil {
		return errors.New(popup.UserMessage(err))
	}
	fmt.Println(timecode.Format(pos))
	return nil
}

// extract loads target, retrying once through the proxy when a direct
// browser launch could not reach the page.
func extract(ctx context.Context, cfg config.Config, target string) (content.Content, error) {
	direct := cfg.Proxy
	if inputFile == "" && cfg.Proxy != "" {
		direct = ""
	}

	c, err := loadOnce(ctx, cfg, direct, target)
	if err == nil {
		return c, nil
	}
	if inputFile != "" || direct == cfg.Proxy || !errors.Is(err, popup.ErrNoActiveTab) {
		return nil, errors.New(popup.UserMessage(err))
	}

	log.Warn().Err(err).Str("proxy", cfg.Proxy).Msg("first attempt failed, retrying with proxy")
	c, err = loadOnce(ctx, cfg, cfg.Proxy, target)
	if err != nil {
		return nil, errors.New(popup.UserMessage(err))
	}
	log.Info().Str("proxy", cfg.Proxy).Msg("fetched with proxy")
	return c, nil
}

// openSession is replaced in tests to avoid launching a browser.
var openSession = newSession

func loadOnce(ctx context.Context, cfg config.Config, proxy, target string) (content.Content, error) {
	s, err := openSession(cfg, proxy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", popup.ErrNoActiveTab, err)
	}
	defer s.Close()
	return s.loader.Load(ctx, target)
}

// session owns everything one extraction needs.
type session struct {
	loader  *popup.Loader
	browser *browser.Browser
	sink    telemetry.Sink
}

func newSession(cfg config.Config, proxy string) (*session, error) {
	logger := log.Logger

	var sink telemetry.Sink = telemetry.Nop{}
	if cfg.TelemetryURL != "" {
		sink = telemetry.NewHTTPSink(cfg.TelemetryURL, logger)
	}

	d, err := dispatcher()
	if err != nil {
		return nil, err
	}

	opts := scraper.Options{
		Poll:       cfg.Poll(),
		Mode:       cfg.Mode,
		Screenshot: cfg.Screenshot,
		Telemetry:  sink,
		Logger:     logger,
	}

	s := &session{sink: sink}
	var opener popup.TabOpener
	if inputFile != "" {
		opener = &fileTabs{path: inputFile, dispatcher: d, opts: opts, sink: sink}
	} else {
		b, err := browser.New(browser.Config{ProxyURL: proxy, Headless: !cfg.ShowUI, Stealth: cfg.Stealth})
		if err != nil {
			return nil, err
		}
		s.browser = b
		log.Debug().Str("proxy", b.GetProxyURL()).Bool("stealth", cfg.Stealth).Msg("browser launched")
		opener = &browserTabs{
			browser:    b,
			open:       openOptions(cfg),
			dispatcher: d,
			opts:       opts,
			sink:       sink,
		}
	}

	s.loader = popup.NewLoader(opener, popup.WithTelemetry(sink), popup.WithLogger(logger))
	return s, nil
}

// openOptions maps the resolved config onto how each tab is opened.
func openOptions(cfg config.Config) browser.OpenOptions {
	return browser.OpenOptions{
		Headers:    cfg.Headers,
		WaitFor:    browser.WaitStrategy(cfg.WaitFor),
		WaitTarget: cfg.WaitTarget,
		Timeout:    cfg.Timeout,
	}
}

func (s *session) Close() {
	if err := s.loader.Close(); err != nil {
		log.Debug().Err(err).Msg("close tab")
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.Debug().Err(err).Msg("close browser")
		}
	}
	if hs, ok := s.sink.(*telemetry.HTTPSink); ok {
		hs.Close()
	}
}

func dispatcher() (*dispatch.Dispatcher, error) {
	if site == "" {
		return dispatch.FromRegistry()
	}
	s, ok := scraper.Get(site)
	if !ok {
		return nil, fmt.Errorf("unknown site: %s", site)
	}
	return dispatch.Forced(s), nil
}

func ask(ctx context.Context, cfg config.Config, c content.Content) error {
	system, err := prompt.Build(c)
	if err != nil {
		return err
	}
	client := chat.NewClient(chat.Config{BaseURL: cfg.LLMBaseURL, APIKey: cfg.LLMAPIKey})
	conv := chat.NewConversation(client, cfg.LLMModel, system, log.Logger)

	if _, err := conv.Ask(ctx, question, os.Stdout); err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	fmt.Println()
	return nil
}

// parseHeaders parses "Key: Value" header arguments.
func parseHeaders(headerSlice []string) map[string]string {
	headersMap := make(map[string]string)
	for _, h := range headerSlice {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			if key != "" {
				headersMap[key] = strings.TrimSpace(parts[1])
			}
		}
	}
	return headersMap
}

// normalizeURL adds http:// when no scheme is given.
func normalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return rawURL
	}
	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return "http://" + rawURL
	}
	return rawURL
}
