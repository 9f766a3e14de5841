package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/weft/internal/presentation/graph"
	"github.com/aretw0/weft/pkg/chain"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/pointcut"
)

func hook(context.Context, *domain.Invocation) error { return nil }

func around(ctx context.Context, _ *domain.Invocation, proceed domain.Proceed) (any, error) {
	return proceed(ctx)
}

func TestGenerateMermaid(t *testing.T) {
	full := []domain.Rule{
		{ID: 1, Pointcut: pointcut.MustParse("service..*"), Advice: []domain.Advice{
			domain.Before("log", hook),
			domain.AfterSuccess("returned", hook),
			domain.AfterFailure("thrown", hook),
			domain.AfterAlways("done", hook),
		}},
		{ID: 2, Pointcut: pointcut.MustParse("@logged"), Advice: []domain.Advice{domain.Around("timing", around)}},
	}
	target := domain.Target{Name: "service.OrderService.CreateOrder", Tags: domain.Tags{"logged": ""}}

	tests := []struct {
		name     string
		chain    chain.Chain
		overlay  *graph.Overlay
		contains []string
		absent   []string
	}{
		{
			name:  "Full Chain",
			chain: chain.Build(target, full),
			contains: []string{
				"call((\"call\"))",
				"b0[\"before: log\"]",
				"a0[[\"around: timing\"]]",
				"body[(\"OrderService.CreateOrder(..)\")]",
				"call --> b0",
				"b0 --> a0",
				"a0 --> body",
				"body -- \"success\" --> s0",
				"body -- \"failure\" --> f0",
				"s0 --> w0",
				"f0 --> w0",
				"w0 --> ret",
			},
		},
		{
			name:  "Empty Chain",
			chain: chain.Build(domain.Target{Name: "repository.Users.Find"}, full),
			contains: []string{
				"call --> body",
				"body --> ret",
			},
			absent: []string{"b0", "w0"},
		},
		{
			name:    "Overlay",
			chain:   chain.Build(target, full),
			overlay: &graph.Overlay{Fired: []string{"before:log", "around:timing"}},
			contains: []string{
				"classDef fired",
				"class b0 fired;",
				"class a0 fired;",
			},
			absent: []string{"class s0 fired;"},
		},
	}

	if !tests[1].chain.Empty() {
		t.Fatalf("%s: fixture target matches a rule", tests[1].name)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.chain, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() missing %q\nGot:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() unexpectedly contains %q\nGot:\n%s", unwanted, got)
				}
			}
		})
	}
}
