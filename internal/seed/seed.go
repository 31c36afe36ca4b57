package seed

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/pkg/helpers"
)

// ClassStore is the part of the class repository seeding needs.
type ClassStore interface {
	Create(ctx context.Context, class *models.Class) error
	List(ctx context.Context, filter models.SubmissionFilter) ([]*models.Class, error)
}

// AdminGranter promotes configured users to administrators.
type AdminGranter interface {
	GrantAdmin(ctx context.Context, emails []string) error
}

// Options controls what CreateDefaultData creates.
type Options struct {
	AdminEmails []string
	DemoClasses bool
}

// demoClasses are approved so the public catalog is not empty on a fresh install.
var demoClasses = []models.Class{
	{Title: "Watercolor Basics", Description: "Washes, layering and color mixing for beginners.", InstructorName: "Mina Park", Price: 4500, SeatsAvailable: 12},
	{Title: "Figure Drawing", Description: "Gesture and proportion from a live model.", InstructorName: "Jonas Ulrich", Price: 6000, SeatsAvailable: 8},
	{Title: "Wheel-Thrown Ceramics", Description: "Centering, pulling walls and trimming.", InstructorName: "Ana Souza", Price: 7500, SeatsAvailable: 6},
}

const demoInstructorEmail = "studio@monchobi.art"

// CreateDefaultData grants the admin role to the configured emails and, when
// asked to, fills an empty catalog with demo classes.
func CreateDefaultData(ctx context.Context, classes ClassStore, admins AdminGranter, opts Options, lgr zerolog.Logger) error {
	var finalErr error

	if len(opts.AdminEmails) > 0 {
		lgr.Info().Int("count", len(opts.AdminEmails)).Msg("Granting admin role to configured users...")
		if err := admins.GrantAdmin(ctx, opts.AdminEmails); err != nil {
			lgr.Error().Err(err).Msg("Error granting admin role")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if !opts.DemoClasses {
		return finalErr
	}

	existing, err := classes.List(ctx, models.SubmissionFilter{})
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking existing classes")
		return errors.Join(finalErr, err)
	}
	if len(existing) > 0 {
		lgr.Debug().Int("classes", len(existing)).Msg("Catalog already populated, skipping demo classes")
		return finalErr
	}

	for _, demo := range demoClasses {
		now := helpers.NowUTC()
		class := demo
		class.ID = uuid.NewString()
		class.InstructorEmail = demoInstructorEmail
		class.Status = models.ClassStatusApproved
		class.CreatedAt = now
		class.UpdatedAt = now

		if err := classes.Create(ctx, &class); err != nil {
			lgr.Error().Err(err).Str("title", class.Title).Msg("Error creating demo class")
			finalErr = errors.Join(finalErr, err)
			continue
		}
	}
	lgr.Info().Int("classes", len(demoClasses)).Msg("Demo classes created")

	return finalErr
}
