// Package businessflow contains the core business logic and use cases for the marketing operations workflows
package businessflow

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/AiiMS-Group/landbot/app/services"
	"github.com/redis/go-redis/v9"
)

// accountCacheKey namespaces cached CRM lookups per phone number.
func accountCacheKey(phone string) string {
	return "landbot:account:" + phone
}

// resolveAccount fetches the CRM account for a chat phone number, reading
// through an optional redis cache so a multi-step chat interaction does not
// hammer the CRM.
func resolveAccount(ctx context.Context, crm services.CRMService, rc *redis.Client, ttl time.Duration, phone string) (*services.SalesAccount, error) {
	if phone == "" {
		return nil, ErrPhoneRequired
	}

	if rc != nil {
		if raw, err := rc.Get(ctx, accountCacheKey(phone)).Result(); err == nil {
			var account services.SalesAccount
			if err := json.Unmarshal([]byte(raw), &account); err == nil {
				return &account, nil
			}
		}
	}

	account, err := crm.AccountByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if rc != nil {
		if raw, err := json.Marshal(account); err == nil {
			rc.Set(ctx, accountCacheKey(phone), raw, ttl)
		}
	}
	return account, nil
}

// NormalizePhone strips every character that is not a digit or hyphen,
// matching how WA numbers are stored on the chat platform.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// channelTypeBlacklisted filters campaign types operators cannot act on.
// Video campaign budgets cannot be mutated through the standard mutate
// surface, so they are hidden from listings and skipped in bulk updates.
func channelTypeBlacklisted(channelType string) bool {
	return channelType == "VIDEO"
}
