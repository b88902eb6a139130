package sdk

import "strings"

// Credential groups as presented on the configuration step.
const (
	GroupAIModels   = "AI Models"
	GroupBlockchain = "Blockchain"
	GroupSocial     = "Social Media"
)

// CredentialKey describes one optional credential field of an agent.
type CredentialKey struct {
	// Name is the env-style name used on the configuration step.
	Name string
	// Field is the JSON field name on the agent object.
	Field string
	Label string
	Group string
}

var credentialKeys = []CredentialKey{
	{Name: "ALLORA_API_KEY", Field: "allora_api_key", Label: "Allora API Key", Group: GroupAIModels},
	{Name: "ANTHROPIC_API_KEY", Field: "anthropic_api_key", Label: "Anthropic API Key", Group: GroupAIModels},
	{Name: "OPENAI_API_KEY", Field: "openai_api_key", Label: "OpenAI API Key", Group: GroupAIModels},
	{Name: "GROQ_API_KEY", Field: "groq_api_key", Label: "Groq API Key", Group: GroupAIModels},
	{Name: "XAI_API_KEY", Field: "xai_api_key", Label: "XAI API Key", Group: GroupAIModels},
	{Name: "TOGETHER_API_KEY", Field: "together_api_key", Label: "Together API Key", Group: GroupAIModels},
	{Name: "HYPERBOLIC_API_KEY", Field: "hyperbolic_api_key", Label: "Hyperbolic API Key", Group: GroupAIModels},
	{Name: "GALADRIEL_API_KEY", Field: "galadriel_api_key", Label: "Galadriel API Key", Group: GroupAIModels},
	{Name: "GALADRIEL_FINE_TUNE_API_KEY", Field: "galadriel_fine_tune_api_key", Label: "Galadriel Fine Tune API Key", Group: GroupAIModels},
	{Name: "EternalAI_API_KEY", Field: "eternalai_api_key", Label: "Eternal AI API Key", Group: GroupAIModels},
	{Name: "EternalAI_API_URL", Field: "eternalai_api_url", Label: "Eternal AI API URL", Group: GroupAIModels},

	{Name: "EVM_PRIVATE_KEY", Field: "evm_private_key", Label: "EVM Private Key", Group: GroupBlockchain},
	{Name: "SOLANA_PRIVATE_KEY", Field: "solana_private_key", Label: "Solana Private Key", Group: GroupBlockchain},
	{Name: "SONIC_PRIVATE_KEY", Field: "sonic_private_key", Label: "Sonic Private Key", Group: GroupBlockchain},
	{Name: "GOAT_RPC_PROVIDER_URL", Field: "goat_rpc_provider_url", Label: "Goat RPC Provider URL", Group: GroupBlockchain},
	{Name: "GOAT_WALLET_PRIVATE_KEY", Field: "goat_wallet_private_key", Label: "Goat Wallet Private Key", Group: GroupBlockchain},
	{Name: "MONAD_PRIVATE_KEY", Field: "monad_private_key", Label: "Monad Private Key", Group: GroupBlockchain},

	{Name: "FARCASTER_MNEMONIC", Field: "farcaster_mnemonic", Label: "Farcaster Mnemonic", Group: GroupSocial},
	{Name: "TWITTER_CONSUMER_KEY", Field: "twitter_consumer_key", Label: "Twitter Consumer Key", Group: GroupSocial},
	{Name: "TWITTER_CONSUMER_SECRET", Field: "twitter_consumer_secret", Label: "Twitter Consumer Secret", Group: GroupSocial},
	{Name: "TWITTER_ACCESS_TOKEN", Field: "twitter_access_token", Label: "Twitter Access Token", Group: GroupSocial},
	{Name: "TWITTER_ACCESS_TOKEN_SECRET", Field: "twitter_access_token_secret", Label: "Twitter Access Token Secret", Group: GroupSocial},
	{Name: "TWITTER_USER_ID", Field: "twitter_user_id", Label: "Twitter User ID", Group: GroupSocial},
	{Name: "TWITTER_BEARER_TOKEN", Field: "twitter_bearer_token", Label: "Twitter Bearer Token", Group: GroupSocial},
	{Name: "DISCORD_TOKEN", Field: "discord_token", Label: "Discord Token", Group: GroupSocial},
}

// CredentialKeys returns the credential catalog in display order.
func CredentialKeys() []CredentialKey {
	out := make([]CredentialKey, len(credentialKeys))
	copy(out, credentialKeys)
	return out
}

// CredentialGroups returns the group titles in display order.
func CredentialGroups() []string {
	return []string{GroupAIModels, GroupBlockchain, GroupSocial}
}

// CredentialFields returns the JSON field names of all credential keys.
func CredentialFields() []string {
	out := make([]string, 0, len(credentialKeys))
	for _, k := range credentialKeys {
		out = append(out, k.Field)
	}
	return out
}

// LookupCredential finds a credential key by env-style name (any case) or JSON field name.
func LookupCredential(name string) (CredentialKey, bool) {
	for _, k := range credentialKeys {
		if strings.EqualFold(k.Name, name) || k.Field == name {
			return k, true
		}
	}
	return CredentialKey{}, false
}
