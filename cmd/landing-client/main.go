// main package for the landing-judge command-line client
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Flag descriptions.
const (
	flagBaseURLDesc = "Base URL of the landing-judge service"
	flagVoteDesc    = "Submit a landing score (1-10)"
	flagStatsDesc   = "Fetch aggregate landing stats and exit"
	flagWatchDesc   = "Stream live overlay events to stdout"
	flagHealthDesc  = "Check service health and exit"
)

// Flag names.
const (
	flagBaseURL = "url"
	flagVote    = "vote"
	flagStats   = "stats"
	flagWatch   = "watch"
	flagHealth  = "health"
)

// Error and log messages.
const (
	errNoAction          = "one of --vote, --stats, --watch or --health must be provided"
	errRequestFailed     = "request failed: %w"
	errUnexpectedStatus  = "unexpected status %d: %s"
	errServiceNotHealthy = "service is not healthy: %w"
	logServiceHealthy    = "service is healthy"
)

const (
	defaultBaseURL = "http://127.0.0.1:5005"
	clientTimeout  = 15 * time.Second

	dataFramePrefix = "data: "
)

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	baseURL string
	vote    int
	stats   bool
	watch   bool
	health  bool
}

func main() {
	err := run()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	flags := parseFlags()
	ctx := context.Background()

	client := &http.Client{Timeout: clientTimeout}

	switch {
	case flags.health:
		return handleHealth(ctx, client, flags.baseURL)
	case flags.vote != 0:
		return handleVote(ctx, client, flags.baseURL, flags.vote)
	case flags.stats:
		return handleStats(ctx, client, flags.baseURL)
	case flags.watch:
		return handleWatch(ctx, flags.baseURL)
	default:
		return errors.New(errNoAction)
	}
}

// parseFlags defines and parses command-line flags, returning them in a struct.
func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.baseURL, flagBaseURL, defaultBaseURL, flagBaseURLDesc)
	flag.IntVar(&flags.vote, flagVote, 0, flagVoteDesc)
	flag.BoolVar(&flags.stats, flagStats, false, flagStatsDesc)
	flag.BoolVar(&flags.watch, flagWatch, false, flagWatchDesc)
	flag.BoolVar(&flags.health, flagHealth, false, flagHealthDesc)
	flag.Parse()

	return flags
}

func handleHealth(ctx context.Context, client *http.Client, baseURL string) error {
	_, err := get(ctx, client, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf(errServiceNotHealthy, err)
	}

	fmt.Println(logServiceHealthy)

	return nil
}

func handleVote(ctx context.Context, client *http.Client, baseURL string, score int) error {
	body, err := get(ctx, client, baseURL+"/vote/"+strconv.Itoa(score))
	if err != nil {
		return err
	}

	fmt.Println(body)

	return nil
}

func handleStats(ctx context.Context, client *http.Client, baseURL string) error {
	body, err := get(ctx, client, baseURL+"/stats")
	if err != nil {
		return err
	}

	fmt.Println(body)

	return nil
}

// handleWatch attaches to the event stream and prints each event payload as
// one line. It runs until the connection drops or the process is killed.
func handleWatch(ctx context.Context, baseURL string) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/stream", nil)
	if err != nil {
		return fmt.Errorf(errRequestFailed, err)
	}

	// No client timeout here; the stream is expected to stay open.
	streamClient := &http.Client{}

	response, err := streamClient.Do(request)
	if err != nil {
		return fmt.Errorf(errRequestFailed, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf(errUnexpectedStatus, response.StatusCode, response.Status)
	}

	scanner := bufio.NewScanner(response.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if payload, found := strings.CutPrefix(line, dataFramePrefix); found {
			fmt.Println(payload)
		}
	}

	err = scanner.Err()
	if err != nil {
		return fmt.Errorf(errRequestFailed, err)
	}

	return nil
}

func get(ctx context.Context, client *http.Client, url string) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf(errRequestFailed, err)
	}

	response, err := client.Do(request)
	if err != nil {
		return "", fmt.Errorf(errRequestFailed, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf(errRequestFailed, err)
	}

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf(errUnexpectedStatus, response.StatusCode, strings.TrimSpace(string(body)))
	}

	return strings.TrimSpace(string(body)), nil
}
