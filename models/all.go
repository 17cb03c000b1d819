package models

// All lists every persisted model, in dependency order.
func All() []any {
	return []any{
		&Tenant{},
		&Profile{},
		&TenantUser{},
		&TenantInvitation{},
		&Project{},
		&CaltransPhase{},
		&CaltransInvoice{},
		&Grant{},
		&Meeting{},
		&RecordsRequest{},
		&EnvironmentalFactor{},
		&Document{},
		&SalesTaxProgram{},
		&CommunityInput{},
	}
}
