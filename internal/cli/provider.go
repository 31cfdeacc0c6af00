package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aimerfeng/PawPals/internal/search"
)

type ProviderCmd struct {
	ID      string `arg:"" help:"Provider user id."`
	Reviews int    `help:"Number of recent reviews to show." default:"3"`
	JSON    bool   `help:"Print the profile as JSON."`
}

func (p *ProviderCmd) Run(ctx *Context) error {
	runCtx := context.Background()
	b, err := ctx.backend(runCtx)
	if err != nil {
		return err
	}
	defer b.Close()

	svc := search.NewService(b.Store, nil, search.Config{})
	detail, err := svc.Provider(runCtx, p.ID)
	if err != nil {
		if search.IsNotFound(err) {
			return fmt.Errorf("provider %q not found", p.ID)
		}
		return err
	}

	if p.JSON {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(detail)
	}

	user := detail.Profile
	ctx.UI.Successf("%s", user.Name)
	fmt.Fprintf(ctx.Out, "Rating:   %s\n", detail.RatingLabel)
	fmt.Fprintf(ctx.Out, "Price:    %s\n", detail.PriceLabel)
	if len(detail.Services) > 0 {
		fmt.Fprintf(ctx.Out, "Services: %s\n", strings.Join(detail.Services, ", "))
	}
	if len(user.AcceptedBreeds) > 0 {
		fmt.Fprintf(ctx.Out, "Breeds:   %s\n", strings.Join(user.AcceptedBreeds, ", "))
	}
	if user.Location != nil && user.Location.Address != "" {
		fmt.Fprintf(ctx.Out, "Address:  %s\n", user.Location.Address)
	}
	if user.Bio != "" {
		fmt.Fprintf(ctx.Out, "\n%s\n", user.Bio)
	}

	if p.Reviews <= 0 {
		return nil
	}
	reviews, err := svc.Reviews(runCtx, p.ID)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		return nil
	}
	fmt.Fprintln(ctx.Out)
	for _, r := range reviews[:min(p.Reviews, len(reviews))] {
		fmt.Fprintf(ctx.Out, "%s  %d/5  %s\n", ctx.UI.Muted(r.CreatedAt.Format("2006-01-02")), r.Rating, r.ReviewerName)
		if r.Comment != "" {
			fmt.Fprintf(ctx.Out, "  %s\n", r.Comment)
		}
	}
	return nil
}
