package services

import (
	"context"
	"errors"
	"fmt"

	recaptcha "cloud.google.com/go/recaptchaenterprise/v2/apiv1"
	"cloud.google.com/go/recaptchaenterprise/v2/apiv1/recaptchaenterprisepb"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"kalavedi/config"
)

var ErrCaptchaFailed = errors.New("reCAPTCHA verification failed")

type AssessmentResult struct {
	Score   float32  `json:"score"`
	Action  string   `json:"action"`
	Reasons []string `json:"reasons,omitempty"`
}

// CaptchaVerifier checks a client token before a public write.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, action, userIP, userAgent string) (*AssessmentResult, error)
}

// RecaptchaVerifier scores tokens with reCAPTCHA Enterprise.
type RecaptchaVerifier struct {
	client    *recaptcha.Client
	projectID string
	siteKey   string
	minScore  float32
	logger    *zap.Logger
}

func NewRecaptchaVerifier(ctx context.Context, cfg config.RecaptchaConfig, logger *zap.Logger) (*RecaptchaVerifier, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := recaptcha.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create reCAPTCHA client: %w", err)
	}
	return &RecaptchaVerifier{
		client:    client,
		projectID: cfg.ProjectID,
		siteKey:   cfg.SiteKey,
		minScore:  cfg.MinScore,
		logger:    logger,
	}, nil
}

func (v *RecaptchaVerifier) Close() error {
	return v.client.Close()
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, token, action, userIP, userAgent string) (*AssessmentResult, error) {
	if token == "" {
		return nil, ErrCaptchaFailed
	}
	req := &recaptchaenterprisepb.CreateAssessmentRequest{
		Parent: fmt.Sprintf("projects/%s", v.projectID),
		Assessment: &recaptchaenterprisepb.Assessment{
			Event: &recaptchaenterprisepb.Event{
				Token:         token,
				SiteKey:       v.siteKey,
				UserIpAddress: userIP,
				UserAgent:     userAgent,
			},
		},
	}
	response, err := v.client.CreateAssessment(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create assessment: %w", err)
	}

	props := response.GetTokenProperties()
	if props == nil || !props.GetValid() {
		v.logger.Info("reCAPTCHA token invalid", zap.String("reason", props.GetInvalidReason().String()))
		return nil, ErrCaptchaFailed
	}
	if action != "" && props.GetAction() != action {
		v.logger.Info("reCAPTCHA action mismatch", zap.String("expected", action), zap.String("got", props.GetAction()))
		return nil, ErrCaptchaFailed
	}

	result := &AssessmentResult{Action: props.GetAction()}
	if risk := response.GetRiskAnalysis(); risk != nil {
		result.Score = risk.GetScore()
		for _, reason := range risk.GetReasons() {
			result.Reasons = append(result.Reasons, reason.String())
		}
	}
	if result.Score < v.minScore {
		v.logger.Info("reCAPTCHA score too low", zap.Float32("score", result.Score))
		return result, ErrCaptchaFailed
	}
	return result, nil
}
