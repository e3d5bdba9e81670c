package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	provisioningdomain "github.com/streamvue/streamvue/internal/provisioning/domain"
	"github.com/streamvue/streamvue/internal/provisioning/panelclient"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	Panel *panelclient.Client
}

type Service struct {
	log   *zap.Logger
	panel *panelclient.Client
}

func New(p Params) provisioningdomain.Service {
	return &Service{
		log:   p.Log.Named("provisioning.service"),
		panel: p.Panel,
	}
}

func (s *Service) Placeholders(n int) []provisioningdomain.Credential {
	creds := make([]provisioningdomain.Credential, 0, n)
	for i := 0; i < n; i++ {
		creds = append(creds, provisioningdomain.Credential{
			Username: "user_" + randomHex(4),
			Password: randomHex(8),
		})
	}
	return creds
}

func (s *Service) Provision(ctx context.Context, reqs []provisioningdomain.ProvisionRequest) ([]provisioningdomain.PanelAccount, error) {
	accounts := make([]provisioningdomain.PanelAccount, 0, len(reqs))
	for i, req := range reqs {
		acct, err := s.panel.CreateAccount(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("provision account %d/%d: %w", i+1, len(reqs), err)
		}
		accounts = append(accounts, *acct)
	}
	s.log.Info("accounts provisioned", zap.Int("count", len(accounts)))
	return accounts, nil
}

func randomHex(nBytes int) string {
	buf := make([]byte, nBytes)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
