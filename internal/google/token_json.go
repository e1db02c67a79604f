package google

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gdata/internal/models"
)

const tokenInfoPath = "/oauth2/v2/tokeninfo"

// tokenInfo is the tokeninfo response body. Expiry is relative, in seconds.
type tokenInfo struct {
	IssuedTo      string `json:"issued_to"`
	Audience      string `json:"audience"`
	UserID        string `json:"user_id"`
	Scope         string `json:"scope"`
	ExpiresIn     int64  `json:"expires_in"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	AccessType    string `json:"access_type"`
}

// decodeToken parses a tokeninfo body for bearer. ExpiresAt is computed from
// now, so decoding the same body later yields a later expiry.
func decodeToken(body []byte, bearer string, now time.Time) (*models.Token, error) {
	var info tokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to decode token info: %w", err)
	}
	return &models.Token{
		Bearer:     bearer,
		IssuedTo:   info.IssuedTo,
		Audience:   info.Audience,
		Scopes:     strings.Fields(info.Scope),
		ExpiresAt:  now.Truncate(time.Second).Add(time.Duration(info.ExpiresIn) * time.Second),
		AccessType: info.AccessType,
		Email:      info.Email,
		UserID:     info.UserID,
	}, nil
}

func (c *Client) bindToken(v *models.Token) *binding {
	return &binding{
		endpoint: &c.tokens,
		path:     tokenInfoPath,
		isNew:    v.IsNew(),
		readOnly: true,
		encode:   func() ([]byte, error) { return []byte("{}"), nil },
		decode: func(body []byte) error {
			decoded, err := decodeToken(body, v.Bearer, c.now())
			if err != nil {
				return err
			}
			*v = *decoded
			return nil
		},
	}
}
