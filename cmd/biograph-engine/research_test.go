// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"

	"github.com/pdiddy/biograph-engine/pkg/types"
)

func TestNewPipelineClassifierToggle(t *testing.T) {
	cfg := types.PipelineConfig{
		Generation: types.AIConfig{Model: "gpt-4o", APIKey: "k"},
		Research:   types.BalancedResearch(),
	}

	if p := newPipeline(cfg, nil, false); p.Classifier != nil {
		t.Error("classification disabled, but a classifier was wired")
	}
	if p := newPipeline(cfg, nil, true); p.Classifier == nil {
		t.Error("classification enabled, but no classifier was wired")
	}
}
