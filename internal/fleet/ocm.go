package fleet

import (
	"fmt"
	"strings"

	"fleetbuddy/internal/fileio"
	"fleetbuddy/internal/logger"
	"fleetbuddy/internal/runner"
	"fleetbuddy/internal/templates"
)

func (s *Service) runTemplate(action string, path string, ctx map[string]interface{}, cfg runner.RunConfig) *runner.Result {
	command, err := templates.Render(path, ctx)
	if err != nil {
		return &runner.Result{
			ErrorMessage: fmt.Sprintf("%v: %v", ErrRenderFailed, err),
			Err:          fmt.Errorf("%w: %v", ErrRenderFailed, err),
		}
	}

	return s.run(action, command, cfg)
}

func (s *Service) RefreshToken(cfg runner.RunConfig) *runner.Result {
	return s.runTemplate(ActionToken, templates.OCMTokenScript, nil, cfg)
}

// OCMLogin starts the browser based auth-code login against the configured
// OCM environment.
func (s *Service) OCMLogin(cfg runner.RunConfig) *runner.Result {
	return s.runTemplate(ActionLogin, templates.OCMLoginScript, map[string]interface{}{
		"env": s.Settings.OCMEnv,
	}, cfg)
}

func (s *Service) OCMWhoAmI(cfg runner.RunConfig) *runner.Result {
	return s.runTemplate(ActionOCMWhoAmI, templates.OCMWhoAmIScript, nil, cfg)
}

func (s *Service) OCWhoAmI(cfg runner.RunConfig) *runner.Result {
	return s.runTemplate(ActionOCWhoAmI, templates.OCWhoAmIScript, nil, cfg)
}

// TestEnv builds the export statements for the integration test suite. When
// writePath is set the script is also written there.
func (s *Service) TestEnv(writePath string) (*TestEnv, error) {
	token := s.RefreshToken(runner.RunConfig{})
	if !token.Success {
		return nil, fmt.Errorf("%w: %s", ErrTokenFailed, token.ErrorMessage)
	}

	kubeconfig, err := fileio.Read(s.Settings.Kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKubeconfigMissing, err)
	}

	script, err := templates.Render(templates.TestEnvScript, map[string]interface{}{
		"token":      strings.TrimSpace(token.Stdout),
		"kubeconfig": kubeconfig,
		"ocmEnv":     s.Settings.OCMEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	env := &TestEnv{Script: script}

	if writePath != "" {
		if err := fileio.Write(writePath, script); err != nil {
			return nil, err
		}
		env.Written = writePath
		logger.Info("Test environment written to %s", writePath)
	}

	return env, nil
}

func (s *Service) Custom(command string, cfg runner.RunConfig) *runner.Result {
	logger.Info("Running custom command: %s", runner.Redact(command, cfg.Credentials))
	return s.run(ActionCustom, command, cfg)
}

// Open launches the Hive console ("console") or the OCM token page ("token").
func (s *Service) Open(target string) (*runner.Result, error) {
	var url string

	switch target {
	case "console":
		url = s.Settings.ConsoleURL
	case "token":
		url = s.Settings.TokenURL
	default:
		return nil, fmt.Errorf("%w: %s (expected console or token)", ErrUnknownTarget, target)
	}

	result := s.runTemplate(ActionOpen, templates.OpenURLScript, map[string]interface{}{
		"opener": s.opener(),
		"url":    url,
	}, runner.RunConfig{})

	return result, nil
}
