package bot

import (
	"context"

	lex "github.com/aws/aws-sdk-go-v2/service/lexmodelbuildingservice"
)

// LexAPI is the subset of the Lex model building client used by the deployer.
type LexAPI interface {
	GetSlotType(ctx context.Context, in *lex.GetSlotTypeInput, optFns ...func(*lex.Options)) (*lex.GetSlotTypeOutput, error)
	PutSlotType(ctx context.Context, in *lex.PutSlotTypeInput, optFns ...func(*lex.Options)) (*lex.PutSlotTypeOutput, error)
	GetIntent(ctx context.Context, in *lex.GetIntentInput, optFns ...func(*lex.Options)) (*lex.GetIntentOutput, error)
	PutIntent(ctx context.Context, in *lex.PutIntentInput, optFns ...func(*lex.Options)) (*lex.PutIntentOutput, error)
	GetBot(ctx context.Context, in *lex.GetBotInput, optFns ...func(*lex.Options)) (*lex.GetBotOutput, error)
	PutBot(ctx context.Context, in *lex.PutBotInput, optFns ...func(*lex.Options)) (*lex.PutBotOutput, error)
	GetBotAlias(ctx context.Context, in *lex.GetBotAliasInput, optFns ...func(*lex.Options)) (*lex.GetBotAliasOutput, error)
	PutBotAlias(ctx context.Context, in *lex.PutBotAliasInput, optFns ...func(*lex.Options)) (*lex.PutBotAliasOutput, error)
	GetBotAliases(ctx context.Context, in *lex.GetBotAliasesInput, optFns ...func(*lex.Options)) (*lex.GetBotAliasesOutput, error)
	DeleteBotAlias(ctx context.Context, in *lex.DeleteBotAliasInput, optFns ...func(*lex.Options)) (*lex.DeleteBotAliasOutput, error)
	DeleteBot(ctx context.Context, in *lex.DeleteBotInput, optFns ...func(*lex.Options)) (*lex.DeleteBotOutput, error)
}

// ObjectReader fetches the bot definition document.
type ObjectReader interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}
