package bedrock

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"docextract/internal/config"
	"docextract/internal/domain"
	"docextract/internal/invoker"
	"docextract/internal/port"
)

// converser is the subset of the Bedrock runtime client the invoker needs.
type converser interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Invoker implements port.ModelInvoker using the Amazon Bedrock Converse API.
// Model ids are Bedrock model or inference-profile ids.
type Invoker struct {
	client    converser
	maxTokens int32
}

// NewInvoker creates a Bedrock-backed invoker using the default AWS credential chain.
func NewInvoker(cfg *config.ProviderConfig) (*Invoker, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var clientOpts []func(*bedrockruntime.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *bedrockruntime.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return NewInvokerWithClient(bedrockruntime.NewFromConfig(awsCfg, clientOpts...), cfg.MaxTokens), nil
}

// NewInvokerWithClient wraps an existing Converse client (for testing).
func NewInvokerWithClient(client converser, maxTokens int) *Invoker {
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	return &Invoker{client: client, maxTokens: int32(maxTokens)}
}

func (p *Invoker) Invoke(ctx context.Context, input port.InvokeInput) (*port.Completion, error) {
	format, err := imageFormat(input.Payload.MediaType)
	if err != nil {
		return nil, err
	}
	image, err := base64.StdEncoding.DecodeString(input.Payload.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}

	out, err := p.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(input.Model),
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberImage{
						Value: types.ImageBlock{
							Format: format,
							Source: &types.ImageSourceMemberBytes{Value: image},
						},
					},
					&types.ContentBlockMemberText{Value: invoker.ExtractionPrompt},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens: aws.Int32(p.maxTokens),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("calling bedrock converse: %w", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return nil, fmt.Errorf("empty response from bedrock: no message")
	}

	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}

	completion := &port.Completion{Text: sb.String()}
	if out.Usage != nil {
		completion.Usage = domain.TokenUsage{
			PromptTokens:     int(aws.ToInt32(out.Usage.InputTokens)),
			CompletionTokens: int(aws.ToInt32(out.Usage.OutputTokens)),
			TotalTokens:      int(aws.ToInt32(out.Usage.TotalTokens)),
		}
	}
	return completion, nil
}

func imageFormat(mediaType string) (types.ImageFormat, error) {
	switch strings.ToLower(mediaType) {
	case "image/png":
		return types.ImageFormatPng, nil
	case "image/jpeg", "image/jpg":
		return types.ImageFormatJpeg, nil
	case "image/gif":
		return types.ImageFormatGif, nil
	case "image/webp":
		return types.ImageFormatWebp, nil
	default:
		return "", fmt.Errorf("unsupported image type for bedrock: %s", mediaType)
	}
}
