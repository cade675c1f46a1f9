package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"k8s.io/klog/v2"

	"github.com/agenticrag/backend/internal/client"
)

const EnvServerURL = "AGENTICRAG_SERVER"

var errQueryRequired = errors.New("--query is required")

type options struct {
	query   string
	server  string
	timeout time.Duration
	health  bool
	plain   bool
}

func main() {
	// .env 不存在时忽略
	_ = godotenv.Load()

	klog.InitFlags(nil)
	opts, err := parseFlags(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	term := terminal{
		stdout: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
		stderr: isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
	code := run(context.Background(), opts, client.New(opts.server, opts.timeout), term, os.Stdout, os.Stderr)
	klog.Flush()
	os.Exit(code)
}

func parseFlags(fs *flag.FlagSet, args []string, getenv func(string) string) (*options, error) {
	server := getenv(EnvServerURL)
	if server == "" {
		server = client.DefaultServerURL
	}

	opts := &options{}
	fs.StringVar(&opts.query, "query", "", "question to send to the research crew")
	fs.StringVar(&opts.server, "server", server, "base URL of the predict server (env "+EnvServerURL+")")
	fs.DurationVar(&opts.timeout, "timeout", client.DefaultTimeout, "timeout for the predict request")
	fs.BoolVar(&opts.health, "health", false, "only check server health")
	fs.BoolVar(&opts.plain, "plain", false, "print the raw answer without markdown rendering")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.query = strings.TrimSpace(opts.query)
	if !opts.health && opts.query == "" {
		return nil, errQueryRequired
	}
	return opts, nil
}

// predictor 客户端能力，测试中可替换
type predictor interface {
	Health(ctx context.Context) error
	Predict(ctx context.Context, query string) (string, error)
}

type terminal struct {
	stdout bool
	stderr bool
}

// run 执行一次调用并返回进程退出码
func run(ctx context.Context, opts *options, c predictor, term terminal, stdout, stderr io.Writer) int {
	if opts.health {
		if err := c.Health(ctx); err != nil {
			fmt.Fprintln(stderr, errorStyle.Render("Server unavailable: "+err.Error()))
			return 1
		}
		fmt.Fprintln(stdout, "healthy")
		return 0
	}

	var (
		answer string
		err    error
	)
	if term.stderr {
		answer, err = predictWithSpinner(ctx, c, opts.query, stderr)
	} else {
		answer, err = c.Predict(ctx, opts.query)
	}
	if err != nil {
		fmt.Fprintln(stderr, errorStyle.Render("Error: "+err.Error()))
		return 1
	}

	fmt.Fprintln(stdout, renderAnswer(answer, term.stdout && !opts.plain))
	return 0
}
