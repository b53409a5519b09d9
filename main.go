package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lxing/wheel/internal/sheet"
	"github.com/lxing/wheel/internal/store"
	"github.com/lxing/wheel/internal/term"
	"github.com/lxing/wheel/internal/wheel"
)

const usage = `usage: wheel [play|serve|convert] [flags]

  play                   spin for a game in the terminal (default)
  serve                  host rooms over HTTP and websockets
  convert IN.csv [OUT]   rewrite a spreadsheet export as a game file
`

func main() {
	log.SetPrefix("[WHEEL] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := "play"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	cfg, err := ParseConfig(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	switch cmd {
	case "play":
		return runPlay(ctx, cfg, stdin, stdout)
	case "serve":
		return runServe(ctx, cfg)
	case "convert":
		return runConvert(cfg, fs.Args())
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// openCache opens the catalogue cache. A cache that will not open is logged
// and skipped; the wheel still works from the sheet or the game file.
func openCache(cfg Config) (*store.Store, func()) {
	if cfg.DBPath == "" {
		return nil, func() {}
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Printf("catalogue cache disabled: %v", err)
		return nil, func() {}
	}
	return st, func() {
		if err := st.Close(); err != nil {
			log.Printf("close catalogue cache: %v", err)
		}
	}
}

func newLoader(cfg Config, st *store.Store) *sheet.Loader {
	l := &sheet.Loader{
		URL:      cfg.SheetURL,
		GameFile: cfg.GameFile,
		Fetcher:  sheet.NewFetcher(cfg.FetchTimeout),
	}
	if st != nil {
		l.Cache = st
	}
	return l
}

func freshSpinner() (wheel.Spinner, error) {
	seed, err := wheel.NewSeed()
	if err != nil {
		return nil, err
	}
	return wheel.NewSeededSpinner(seed), nil
}

func spinnerFactory(seed uint64) func() (wheel.Spinner, error) {
	if seed == 0 {
		return freshSpinner
	}
	return func() (wheel.Spinner, error) {
		return wheel.NewSeededSpinner(seed), nil
	}
}

func logResult(res wheel.Result) {
	log.Printf("round %s: outcome=%s pick=%q seed=%d spins=%d removed=%d",
		res.RoundID, res.Outcome, res.Pick, res.Seed, res.Spins, len(res.Removed))
}

func runPlay(ctx context.Context, cfg Config, stdin io.Reader, stdout io.Writer) error {
	st, closeCache := openCache(cfg)
	defer closeCache()

	renderer := term.NewRenderer(stdout, cfg.FrameDelay)
	renderer.Banner()

	input := term.NewInput(stdin, stdout)
	defer input.Close()

	session := &wheel.Session{
		Source:     newLoader(cfg, st),
		Input:      input,
		Renderer:   renderer,
		NewSpinner: spinnerFactory(cfg.Seed),
		OnResult:   logResult,
	}
	if err := session.Run(ctx); err != nil {
		return err
	}
	renderer.Farewell()
	return nil
}

func runServe(ctx context.Context, cfg Config) error {
	st, closeCache := openCache(cfg)
	defer closeCache()

	hub := newWheelHub(newLoader(cfg, st), spinnerFactory(cfg.Seed))
	page, err := instructionsHandler(cfg.Dev)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/wheel/rooms", hub.handleRooms)
	mux.HandleFunc("/api/wheel/lobby", hub.handleLobbyEvents)
	mux.HandleFunc("/api/wheel/ws", hub.handleWS)
	mux.HandleFunc("/", page)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	if cfg.Tailscale {
		url, err := tailnetServer(ctx, server)
		if err != nil {
			return fmt.Errorf("tailscale: %w", err)
		}
		go func() {
			log.Printf("Serving on Tailscale: %s", url)
			errCh <- server.ListenAndServeTLS("", "")
		}()
	} else {
		go func() {
			log.Printf("Starting server on :%s", cfg.Port)
			errCh <- server.ListenAndServe()
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	log.Printf("server stopped")
	return nil
}

func runConvert(cfg Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("convert needs an input CSV and an optional output path")
	}
	outPath := cfg.GameFile
	if len(args) == 2 {
		outPath = args[1]
	}

	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create game file: %w", err)
	}
	cat, err := sheet.Convert(in, out)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("convert %s: %w", args[0], err)
	}
	log.Printf("wrote %s: %d players, %d games", outPath, len(cat.Members), len(cat.Items))
	return nil
}
