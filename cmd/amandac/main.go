// Command amandac compiles a Portuguese-keyword source file into the
// textual bytecode format consumed by the stack-based virtual machine:
// lexing, parsing, semantic analysis, and emission, in that order.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/dcarvalho/amanda/internal/compileerror"
	"github.com/dcarvalho/amanda/internal/config"
	"github.com/dcarvalho/amanda/internal/emitter"
	"github.com/dcarvalho/amanda/internal/parser"
	"github.com/dcarvalho/amanda/internal/semantic"
)

func main() {
	app := cli.NewApp()
	app.Name = "amandac"
	app.Usage = "compila um ficheiro fonte para bytecode textual"
	app.ArgsUsage = "<ficheiro.ama>"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "out, o",
			Usage: "ficheiro de saída (por omissão, <ficheiro>.amasm)",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "ficheiro de configuração YAML (por omissão, a configuração embutida)",
		},
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "ativa o registo interno de depuração",
		},
	}
	app.Action = compile

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, render(err))
		os.Exit(1)
	}
}

func compile(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("uso: amandac [opções] <ficheiro.ama>", 2)
	}
	srcPath := c.Args().First()

	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if c.Bool("verbose") {
		log, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
	}
	log = log.With(zap.String("compilação", uuid.New().String()))
	defer log.Sync() //nolint:errcheck

	start := time.Now()

	prog, err := parser.FileParser{}.ParseFile(srcPath)
	if err != nil {
		return err
	}

	analyzer, err := semantic.New(cfg, parser.FileParser{}, nil, log)
	if err != nil {
		return err
	}
	if err := analyzer.Analyze(srcPath, prog); err != nil {
		return err
	}

	out, err := emitter.New().Emit(prog)
	if err != nil {
		return err
	}

	outPath := c.String("out")
	if outPath == "" {
		outPath = strings.TrimSuffix(srcPath, ".ama") + ".amasm"
	}
	if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
		return err
	}

	fmt.Printf("%s: %s escritos em %s\n",
		outPath, humanize.Bytes(uint64(len(out))), time.Since(start).Round(time.Millisecond))
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return config.Load(data)
}

// render formats a top-level failure for the terminal, coloring compile
// errors when stderr is a TTY.
func render(err error) string {
	var ce *compileerror.CompileError
	if errors.As(err, &ce) {
		msg := fmt.Sprintf("%s:%d: erro: %s", ce.File, ce.Line, ce.Message)
		if isatty.IsTerminal(os.Stderr.Fd()) {
			return "\x1b[31m" + msg + "\x1b[0m"
		}
		return msg
	}
	return err.Error()
}
