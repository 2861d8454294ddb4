package family

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const inviteIssuer = "meal-planner"

type inviteClaims struct {
	FamilyID string `json:"fid"`
	jwt.RegisteredClaims
}

func signInvite(secret []byte, familyID, inviterID string, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, inviteClaims{
		FamilyID: familyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    inviteIssuer,
			Subject:   inviterID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign invite: %w", err)
	}
	return signed, nil
}

func parseInvite(secret []byte, tokenString string, now func() time.Time) (string, error) {
	claims := &inviteClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(inviteIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInvite, err)
	}
	if claims.FamilyID == "" {
		return "", fmt.Errorf("%w: %v", ErrInvalidInvite, errors.New("missing family"))
	}
	return claims.FamilyID, nil
}
