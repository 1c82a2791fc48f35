package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	lex "github.com/aws/aws-sdk-go-v2/service/lexmodelbuildingservice"
	lextypes "github.com/aws/aws-sdk-go-v2/service/lexmodelbuildingservice/types"
	"github.com/go-logr/logr"

	"github.com/lexkendra/lexkendra/internal/lifecycle"
	"github.com/lexkendra/lexkendra/internal/platform/awsclient"
	"github.com/lexkendra/lexkendra/internal/util/retry"
)

// Property names accepted on the custom resource.
const (
	PropLexS3Bucket       = "LexS3Bucket"
	PropLexFileKey        = "LexFileKey"
	PropFulfillmentLambda = "FulfillmentLambda"
	PropKendraSearchRole  = "KendraSearchRole"
	PropKendraIndex       = "KendraIndex"
	PropAccountID         = "AccountID"
	PropBotAliasName      = "BotAliasName"
)

var requiredProperties = []string{
	PropLexS3Bucket,
	PropLexFileKey,
	PropFulfillmentLambda,
	PropKendraSearchRole,
	PropKendraIndex,
	PropAccountID,
}

// Response data keys.
const (
	DataBotName    = "BotName"
	DataBotVersion = "BotVersion"
)

// Defaults.
const (
	DefaultAliasName     = "quickstart"
	DefaultConflictDelay = 10 * time.Second
)

// Deployer implements lifecycle.Provisioner for the bot graph.
type Deployer struct {
	lex           LexAPI
	objects       ObjectReader
	guard         *lifecycle.UpdateGuard
	region        string
	aliasName     string
	conflictDelay time.Duration
}

// Option configures a Deployer.
type Option func(*Deployer)

// WithAliasName sets the alias used when the resource does not name one.
func WithAliasName(name string) Option {
	return func(d *Deployer) {
		d.aliasName = name
	}
}

// WithConflictDelay sets the pause before retrying a conflicting delete.
func WithConflictDelay(delay time.Duration) Option {
	return func(d *Deployer) {
		d.conflictDelay = delay
	}
}

// NewDeployer returns a bot deployer. region is used to build the Kendra
// index ARN wired into search intents.
func NewDeployer(api LexAPI, objects ObjectReader, guard *lifecycle.UpdateGuard, region string, opts ...Option) *Deployer {
	d := &Deployer{
		lex:           api,
		objects:       objects,
		guard:         guard,
		region:        region,
		aliasName:     DefaultAliasName,
		conflictDelay: DefaultConflictDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ lifecycle.Provisioner = (*Deployer)(nil)

// wiring holds the values injected into the exported definition.
type wiring struct {
	FulfillmentLambda string
	KendraRole        string
	KendraIndexARN    string
}

// Create reads the bot definition and upserts slot types, intents and the
// bot, in that order. The bot build continues remotely.
func (d *Deployer) Create(ctx context.Context, req *lifecycle.Request) (lifecycle.PollData, error) {
	props := req.Properties()
	if err := props.Require(requiredProperties...); err != nil {
		return lifecycle.PollData{}, err
	}

	data, err := d.objects.GetObject(ctx, props.String(PropLexS3Bucket), props.String(PropLexFileKey))
	if err != nil {
		return lifecycle.PollData{}, fmt.Errorf("failed to read bot definition: %w", err)
	}
	def, err := parseDefinition(data)
	if err != nil {
		return lifecycle.PollData{}, err
	}

	w := wiring{
		FulfillmentLambda: props.String(PropFulfillmentLambda),
		KendraRole:        props.String(PropKendraSearchRole),
		KendraIndexARN: fmt.Sprintf("arn:aws:kendra:%s:%s:index/%s",
			d.region, props.String(PropAccountID), props.String(PropKendraIndex)),
	}

	slotVersions, err := d.deploySlotTypes(ctx, def.SlotTypes)
	if err != nil {
		return lifecycle.PollData{}, err
	}
	intents, err := d.deployIntents(ctx, def.Intents, slotVersions, w)
	if err != nil {
		return lifecycle.PollData{}, err
	}
	name, version, err := d.deployBot(ctx, def.Bot, intents)
	if err != nil {
		return lifecycle.PollData{}, err
	}

	return lifecycle.PollData{
		PhysicalID: name,
		Values:     map[string]string{DataBotName: name, DataBotVersion: version},
	}, nil
}

func (d *Deployer) deploySlotTypes(ctx context.Context, slotTypes []document) (map[string]string, error) {
	logger := logr.FromContextOrDiscard(ctx)
	versions := make(map[string]string, len(slotTypes))

	for _, st := range slotTypes {
		name := st.str("name")
		if isBuiltin(name) {
			continue
		}
		delete(st, "version")

		checksum, err := d.latestChecksum("slot type", name, func() (*string, error) {
			out, err := d.lex.GetSlotType(ctx, &lex.GetSlotTypeInput{Name: aws.String(name), Version: aws.String(latestVersion)})
			if err != nil {
				return nil, err
			}
			return out.Checksum, nil
		})
		if err != nil {
			return nil, err
		}
		st.setChecksum(checksum)
		st["createVersion"] = true

		var in lex.PutSlotTypeInput
		if err := st.decodeInto(&in); err != nil {
			return nil, fmt.Errorf("invalid slot type %s: %w", name, err)
		}
		out, err := d.lex.PutSlotType(ctx, &in)
		if err != nil {
			return nil, fmt.Errorf("failed to put slot type %s: %w", name, err)
		}
		versions[name] = aws.ToString(out.Version)
		logger.Info("Created/updated slot type", "name", name, "version", versions[name])
	}
	return versions, nil
}

func (d *Deployer) deployIntents(ctx context.Context, intents []document, slotVersions map[string]string, w wiring) ([]lextypes.Intent, error) {
	logger := logr.FromContextOrDiscard(ctx)
	refs := make([]lextypes.Intent, 0, len(intents))

	for _, intent := range intents {
		name := intent.str("name")
		if isBuiltin(name) {
			continue
		}
		delete(intent, "version")

		for _, slot := range intent.docs("slots") {
			if v, ok := slotVersions[slot.str("slotType")]; ok {
				slot["slotTypeVersion"] = v
			}
		}

		if intent.str("parentIntentSignature") == kendraSearchSignature {
			kc := intent.doc("kendraConfiguration")
			if kc == nil {
				kc = document{}
				intent["kendraConfiguration"] = map[string]any(kc)
			}
			kc["kendraIndex"] = w.KendraIndexARN
			kc["role"] = w.KendraRole
		}

		if fa := intent.doc("fulfillmentActivity"); fa != nil && fa.str("type") == codeHookType {
			hook := fa.doc("codeHook")
			if hook == nil {
				hook = document{}
				fa["codeHook"] = map[string]any(hook)
			}
			hook["uri"] = w.FulfillmentLambda
			if hook.str("messageVersion") == "" {
				hook["messageVersion"] = defaultMessageVersion
			}
		}

		checksum, err := d.latestChecksum("intent", name, func() (*string, error) {
			out, err := d.lex.GetIntent(ctx, &lex.GetIntentInput{Name: aws.String(name), Version: aws.String(latestVersion)})
			if err != nil {
				return nil, err
			}
			return out.Checksum, nil
		})
		if err != nil {
			return nil, err
		}
		intent.setChecksum(checksum)
		intent["createVersion"] = true

		var in lex.PutIntentInput
		if err := intent.decodeInto(&in); err != nil {
			return nil, fmt.Errorf("invalid intent %s: %w", name, err)
		}
		out, err := d.lex.PutIntent(ctx, &in)
		if err != nil {
			return nil, fmt.Errorf("failed to put intent %s: %w", name, err)
		}
		refs = append(refs, lextypes.Intent{IntentName: aws.String(name), IntentVersion: out.Version})
		logger.Info("Created/updated intent", "name", name, "version", aws.ToString(out.Version))
	}
	return refs, nil
}

func (d *Deployer) deployBot(ctx context.Context, bot document, intents []lextypes.Intent) (string, string, error) {
	name := bot.str("name")

	refs := make([]any, 0, len(intents))
	for _, ref := range intents {
		refs = append(refs, map[string]any{
			"intentName":    aws.ToString(ref.IntentName),
			"intentVersion": aws.ToString(ref.IntentVersion),
		})
	}
	bot["intents"] = refs
	bot["processBehavior"] = string(lextypes.ProcessBehaviorBuild)
	bot["createVersion"] = true

	checksum, err := d.latestChecksum("bot", name, func() (*string, error) {
		out, err := d.lex.GetBot(ctx, &lex.GetBotInput{Name: aws.String(name), VersionOrAlias: aws.String(latestVersion)})
		if err != nil {
			return nil, err
		}
		return out.Checksum, nil
	})
	if err != nil {
		return "", "", err
	}
	bot.setChecksum(checksum)

	var in lex.PutBotInput
	if err := bot.decodeInto(&in); err != nil {
		return "", "", fmt.Errorf("invalid bot %s: %w", name, err)
	}
	out, err := d.lex.PutBot(ctx, &in)
	if err != nil {
		return "", "", fmt.Errorf("failed to put bot %s: %w", name, err)
	}
	logr.FromContextOrDiscard(ctx).Info("Created/updated bot", "name", aws.ToString(out.Name), "version", aws.ToString(out.Version))
	return aws.ToString(out.Name), aws.ToString(out.Version), nil
}

// latestChecksum returns the checksum of the $LATEST remote object, or nil
// when it does not exist. Any other lookup failure is terminal.
func (d *Deployer) latestChecksum(kind, name string, get func() (*string, error)) (*string, error) {
	checksum, err := get()
	if err != nil {
		if awsclient.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up %s %s: %w", kind, name, err)
	}
	return checksum, nil
}

// PollCreate waits for the bot build and then points the alias at the new
// version.
func (d *Deployer) PollCreate(ctx context.Context, req *lifecycle.Request, data lifecycle.PollData) (lifecycle.Progress, error) {
	name := data.PhysicalID
	if name == "" {
		name = data.Values[DataBotName]
	}
	version := data.Values[DataBotVersion]

	bot, err := d.lex.GetBot(ctx, &lex.GetBotInput{Name: aws.String(name), VersionOrAlias: aws.String(latestVersion)})
	if err != nil {
		return lifecycle.Progress{}, fmt.Errorf("failed to get bot %s: %w", name, err)
	}
	logr.FromContextOrDiscard(ctx).Info("Lex bot status", "name", name, "status", bot.Status)

	switch bot.Status {
	case lextypes.StatusBuilding:
		return lifecycle.Pending(), nil
	case lextypes.StatusFailed:
		return lifecycle.Progress{}, &lifecycle.RemoteStateError{
			Resource: "Lex bot",
			ID:       name,
			State:    string(bot.Status),
			Message:  aws.ToString(bot.FailureReason),
		}
	case lextypes.StatusReady:
	default:
		return lifecycle.Progress{}, &lifecycle.RemoteStateError{Resource: "Lex bot", ID: name, State: string(bot.Status)}
	}

	alias := req.Properties().Default(PropBotAliasName, d.aliasName)
	if err := d.upsertAlias(ctx, alias, name, version); err != nil {
		return lifecycle.Progress{}, err
	}
	return lifecycle.Completed(name, map[string]string{DataBotName: name, DataBotVersion: version}), nil
}

func (d *Deployer) upsertAlias(ctx context.Context, alias, botName, botVersion string) error {
	checksum, err := d.latestChecksum("bot alias", alias, func() (*string, error) {
		out, err := d.lex.GetBotAlias(ctx, &lex.GetBotAliasInput{Name: aws.String(alias), BotName: aws.String(botName)})
		if err != nil {
			return nil, err
		}
		return out.Checksum, nil
	})
	if err != nil {
		return err
	}

	_, err = d.lex.PutBotAlias(ctx, &lex.PutBotAliasInput{
		Name:       aws.String(alias),
		BotName:    aws.String(botName),
		BotVersion: aws.String(botVersion),
		Checksum:   checksum,
	})
	if err != nil {
		return fmt.Errorf("failed to put alias %s of bot %s: %w", alias, botName, err)
	}
	logr.FromContextOrDiscard(ctx).Info("Created/updated bot alias", "alias", alias, "bot", botName, "version", botVersion)
	return nil
}

// Update rejects updates while the stack is updating.
func (d *Deployer) Update(ctx context.Context, req *lifecycle.Request) (string, error) {
	return d.guard.Check(ctx, req)
}

// Delete removes every alias of the bot and then the bot. It never fails.
func (d *Deployer) Delete(ctx context.Context, req *lifecycle.Request) {
	logger := logr.FromContextOrDiscard(ctx)
	name := req.PhysicalResourceID
	if name == "" {
		logger.Info("No bot recorded, nothing to delete")
		return
	}

	aliases, err := d.aliases(ctx, name)
	switch {
	case awsclient.IsNotFound(err):
		logger.Info("Already deleted: bot", "name", name)
		return
	case err != nil:
		logger.Error(err, "Failed to list bot aliases", "bot", name)
	}

	for _, alias := range aliases {
		err := d.retryOnConflict(ctx, func(ctx context.Context) error {
			_, err := d.lex.DeleteBotAlias(ctx, &lex.DeleteBotAliasInput{Name: aws.String(alias), BotName: aws.String(name)})
			return err
		})
		logDeleteResult(logger, "bot alias", alias, err)
	}

	err = d.retryOnConflict(ctx, func(ctx context.Context) error {
		_, err := d.lex.DeleteBot(ctx, &lex.DeleteBotInput{Name: aws.String(name)})
		return err
	})
	logDeleteResult(logger, "bot", name, err)
}

func (d *Deployer) aliases(ctx context.Context, botName string) ([]string, error) {
	var names []string
	var token *string
	for {
		out, err := d.lex.GetBotAliases(ctx, &lex.GetBotAliasesInput{BotName: aws.String(botName), NextToken: token})
		if err != nil {
			return names, err
		}
		for _, a := range out.BotAliases {
			names = append(names, aws.ToString(a.Name))
		}
		if aws.ToString(out.NextToken) == "" {
			return names, nil
		}
		token = out.NextToken
	}
}

func (d *Deployer) retryOnConflict(ctx context.Context, op func(context.Context) error) error {
	return retry.Do(ctx, op, retry.Once(d.conflictDelay), retry.WithRetryIf(awsclient.IsConflict))
}

func logDeleteResult(logger logr.Logger, kind, name string, err error) {
	switch {
	case err == nil:
		logger.Info("Deleted "+kind, "name", name)
	case awsclient.IsNotFound(err):
		logger.Info("Already deleted: "+kind, "name", name)
	default:
		logger.Error(err, "Failed to delete "+kind, "name", name)
	}
}
