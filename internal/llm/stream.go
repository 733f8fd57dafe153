// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"strings"

	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/petar-djukic/go-splice/pkg/types"
)

// EventStream abstracts the Bedrock ConverseStream event stream for testing.
type EventStream interface {
	Events() <-chan brtypes.ConverseStreamOutput
	Close() error
	Err() error
}

// consumeStream reads events from a ConverseStream, forwards text tokens on
// tokenCh and accumulates the full response. tokenCh is closed when the
// stream ends or ctx is done; a cancelled stream returns the partial text.
func consumeStream(ctx context.Context, stream EventStream, tokenCh chan<- string) *types.StreamResponse {
	defer close(tokenCh)

	var text strings.Builder
	response := &types.StreamResponse{}
	finish := func() *types.StreamResponse {
		response.FullText = text.String()
		return response
	}

	events := stream.Events()
	for {
		select {
		case <-ctx.Done():
			stream.Close()
			return finish()

		case event, ok := <-events:
			if !ok {
				return finish()
			}

			switch v := event.(type) {
			case *brtypes.ConverseStreamOutputMemberContentBlockDelta:
				delta, ok := v.Value.Delta.(*brtypes.ContentBlockDeltaMemberText)
				if !ok {
					continue
				}
				text.WriteString(delta.Value)
				select {
				case tokenCh <- delta.Value:
				case <-ctx.Done():
					stream.Close()
					return finish()
				}

			case *brtypes.ConverseStreamOutputMemberMessageStop:
				response.StopReason = string(v.Value.StopReason)

			case *brtypes.ConverseStreamOutputMemberMetadata:
				if u := v.Value.Usage; u != nil {
					if u.InputTokens != nil {
						response.Usage.InputTokens = int(*u.InputTokens)
					}
					if u.OutputTokens != nil {
						response.Usage.OutputTokens = int(*u.OutputTokens)
					}
				}
			}
		}
	}
}
