package rank

import (
	"context"

	"qualisync/internal/errs"
	"qualisync/internal/ports"
)

// Service serves the priority ranking from the stored catalog. It is a
// pure read path; ranking never writes.
type Service struct {
	catalog ports.QualityCatalog
}

func NewService(catalog ports.QualityCatalog) *Service {
	return &Service{catalog: catalog}
}

// RankOrganization ranks every analysis project of one organization.
func (s *Service) RankOrganization(ctx context.Context, organizationKey string) ([]Entry, error) {
	org, err := s.catalog.OrganizationByKey(ctx, organizationKey)
	if err != nil {
		return nil, errs.Wrapf(err, "resolve organization %s", organizationKey)
	}

	snapshots, err := s.catalog.RankingSnapshots(ctx, org.OrganizationID)
	if err != nil {
		return nil, err
	}
	return Rank(snapshots), nil
}
