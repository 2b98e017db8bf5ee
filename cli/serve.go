package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/chatops/agent"
	"github.com/effective-security/chatops/apiserver"
	"github.com/effective-security/chatops/callbacks"
	"github.com/effective-security/chatops/config"
	"github.com/effective-security/chatops/pkg/llms"
	"github.com/effective-security/chatops/pkg/llms/openai"
	"github.com/effective-security/chatops/store"
	"github.com/effective-security/chatops/toolservice"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/chatops", "cli")

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgFile)
			if err != nil {
				return err
			}

			srv, err := buildServer(cfg)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.KV(xlog.INFO, "status", "shutting_down", "signal", sig.String())
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	return cmd
}

func buildServer(cfg *config.Config) (*apiserver.Server, error) {
	gateway, err := toolservice.NewClient(cfg.Gateway.BaseURL,
		toolservice.WithToken(cfg.Gateway.Token))
	if err != nil {
		return nil, err
	}

	llmOpts := []openai.Option{
		openai.WithToken(cfg.LLM.Token),
	}
	if cfg.LLM.Model != "" {
		llmOpts = append(llmOpts, openai.WithModel(cfg.LLM.Model))
	}
	if cfg.LLM.BaseURL != "" {
		llmOpts = append(llmOpts, openai.WithBaseURL(cfg.LLM.BaseURL))
	}
	if cfg.LLM.Provider != "" {
		llmOpts = append(llmOpts, openai.WithProviderType(llms.ProviderType(cfg.LLM.Provider)))
	}
	model, err := openai.New(llmOpts...)
	if err != nil {
		return nil, err
	}

	agentOpts := []agent.Option{
		agent.WithCallback(callbacks.NewPackageLogger(logger)),
	}
	if cfg.Agent.IterationLimit > 0 {
		agentOpts = append(agentOpts, agent.WithIterationLimit(cfg.Agent.IterationLimit))
	}
	if cfg.Agent.ToolErrorFeedback {
		agentOpts = append(agentOpts, agent.WithToolErrorFeedback(true))
	}
	if cfg.Agent.LoopThreshold > 0 {
		threshold := cfg.Agent.LoopThreshold
		agentOpts = append(agentOpts, agent.WithLoopDetection(func() agent.LoopDetector {
			return agent.NewRepeatDetector(threshold)
		}))
	}
	if cfg.LLM.MaxTokens > 0 {
		agentOpts = append(agentOpts, agent.WithMaxTokens(cfg.LLM.MaxTokens))
	}
	if cfg.LLM.Temperature > 0 {
		agentOpts = append(agentOpts, agent.WithTemperature(cfg.LLM.Temperature))
	}
	runner := agent.New(model, gateway, agentOpts...)

	var ms store.MessageStore
	if cfg.Agent.MaxHistory > 0 {
		ms = store.NewMemoryStoreWithLimit(cfg.Agent.MaxHistory)
	} else {
		ms = store.NewMemoryStore()
	}

	return apiserver.NewServer(cfg.Server.ListenAddr, runner, ms), nil
}
