// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package salesforce

import (
	"fmt"

	"github.com/k-capehart/go-salesforce/v2"
)

// DefaultTeamMemberQuery lists the email of every team member, it is the
// identity source used when no query is configured.
const DefaultTeamMemberQuery = "SELECT fHCM2__Email__c FROM fHCM2__Team_Member__c WHERE fHCM2__Email__c != null ORDER BY fHCM2__Email__c"

// DefaultTeamMemberColumn is the field holding the identifier in DefaultTeamMemberQuery.
const DefaultTeamMemberColumn = "fHCM2__Email__c"

// NewClient authenticates against Salesforce with the client credentials flow.
func NewClient(domain, consumerKey, consumerSecret string) (*salesforce.Salesforce, error) {
	if domain == "" || consumerKey == "" || consumerSecret == "" {
		return nil, fmt.Errorf("salesforce source requires a domain, a consumer key and a consumer secret")
	}

	c, err := salesforce.Init(salesforce.Creds{
		Domain:         domain,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize salesforce client: %w", err)
	}

	return c, nil
}
