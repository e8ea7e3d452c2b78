package main

// Run a generation use case against a local file without the HTTP layer:
//   go run ./cmd/prompttest -resume cv.pdf -jd posting.txt -job-title "Backend Engineer"
//   go run ./cmd/prompttest -use-case job -jd posting.txt

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"resume-coach/internal/extract"
	"resume-coach/internal/generation"
	"resume-coach/internal/llm"
	openai "resume-coach/internal/llm/openai"
	"resume-coach/internal/shared/config"
	"resume-coach/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()

	useCase := flag.String("use-case", "critique", "critique or job")
	resumePath := flag.String("resume", "", "Path to resume PDF (critique)")
	jdPath := flag.String("jd", "", "Path to job description text")
	jobTitle := flag.String("job-title", "", "Target job title (critique)")
	company := flag.String("company", "", "Company name (optional)")
	effort := flag.String("effort", "low", "Reasoning effort: low, medium or high")
	outPath := flag.String("out", "", "Path to write JSON output (optional)")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	timeout := flag.Duration("timeout", 2*time.Minute, "Per-call deadline")
	flag.Parse()

	_ = telemetry.Init(cfg.Env)
	defer telemetry.Sync()

	client, err := openai.NewClient(cfg.OpenAIAPIKey, *model, cfg.OpenAIBaseURL)
	if err != nil {
		exitErr(err.Error())
	}
	orchestrator := generation.NewOrchestrator(llm.NewGuard(client, *timeout))
	ctx := context.Background()

	jobDescription := ""
	if strings.TrimSpace(*jdPath) != "" {
		jdBytes, err := os.ReadFile(*jdPath)
		if err != nil {
			exitErr(fmt.Sprintf("read job description: %v", err))
		}
		jobDescription = string(jdBytes)
	}

	var out any
	switch strings.TrimSpace(*useCase) {
	case "critique":
		if strings.TrimSpace(*resumePath) == "" || strings.TrimSpace(*jobTitle) == "" {
			exitErr("resume and job-title are required")
		}
		resumeText, err := extract.LocalConverter{}.Convert(ctx, *resumePath)
		if err != nil {
			exitErr(err.Error())
		}
		out, err = orchestrator.CritiqueResume(ctx, generation.CritiqueInput{
			ResumeMarkdown: resumeText,
			JobTitle:       *jobTitle,
			JobDescription: jobDescription,
			CompanyName:    *company,
			Effort:         llm.ParseEffort(*effort),
		})
		if err != nil {
			exitErr(fmt.Sprintf("critique: %v", err))
		}
	case "job":
		if strings.TrimSpace(jobDescription) == "" {
			exitErr("jd is required")
		}
		out, err = orchestrator.ExtractJob(ctx, jobDescription)
		if err != nil {
			exitErr(fmt.Sprintf("extract job: %v", err))
		}
	default:
		exitErr(fmt.Sprintf("unsupported use case: %s", *useCase))
	}

	pretty, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	pretty = append(pretty, '\n')

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
