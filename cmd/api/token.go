package main

import (
	"fmt"
	"time"

	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cobra"
)

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, tokenVersion int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub": userID,
		"tv":  tokenVersion,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// 運用者向け：ユーザーの今のtoken_versionでbearerトークンを発行する。
func issueTokenCmd() *cobra.Command {
	var (
		userID int64
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Mint a bearer token for a user at their current token version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user-id is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			gormDB, err := db.Connect(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}

			u, err := infraRepo.NewUserGormRepository(gormDB).FindByID(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("find user %d: %w", userID, err)
			}

			issuer := &jwtIssuer{secret: []byte(cfg.JWTSecret), accessTTL: ttl}
			token, expiresAt, err := issuer.Issue(u.ID, u.TokenVersion, time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "role=%s expires_at=%s\n", u.Role, expiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "user id to issue the token for")
	cmd.Flags().DurationVar(&ttl, "ttl", 15*time.Minute, "token lifetime")
	return cmd
}
