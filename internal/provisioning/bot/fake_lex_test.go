package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	lex "github.com/aws/aws-sdk-go-v2/service/lexmodelbuildingservice"
	lextypes "github.com/aws/aws-sdk-go-v2/service/lexmodelbuildingservice/types"

	"github.com/lexkendra/lexkendra/internal/platform/s3"
)

// fakeLex is an in-memory Lex model store. Every put bumps the version and
// the checksum of the named object.
type fakeLex struct {
	mu        sync.Mutex
	calls     []string
	checksums map[string]string
	versions  map[string]int

	slotTypeInputs []*lex.PutSlotTypeInput
	intentInputs   []*lex.PutIntentInput
	botInputs      []*lex.PutBotInput
	aliasInputs    []*lex.PutBotAliasInput

	botStatus     lextypes.Status
	failureReason string
	getErr        error

	aliasPages     [][]string
	deleteAliasErr map[string][]error
	deleteBotErr   []error
	listAliasesErr error
}

func newFakeLex() *fakeLex {
	return &fakeLex{
		checksums:      make(map[string]string),
		versions:       make(map[string]int),
		botStatus:      lextypes.StatusBuilding,
		deleteAliasErr: make(map[string][]error),
	}
}

func (f *fakeLex) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeLex) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// seed marks an object as existing remotely with the given checksum.
func (f *fakeLex) seed(kind, name, checksum string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checksums[kind+"/"+name] = checksum
	f.versions[kind+"/"+name] = 1
}

func (f *fakeLex) get(kind, name string) (*string, error) {
	f.record("Get" + kind + ":" + name)
	if f.getErr != nil {
		return nil, f.getErr
	}
	cs, ok := f.checksums[kind+"/"+name]
	if !ok {
		return nil, &lextypes.NotFoundException{Message: aws.String(kind + " " + name + " not found")}
	}
	return aws.String(cs), nil
}

func (f *fakeLex) put(kind, name string) string {
	f.record("Put" + kind + ":" + name)
	key := kind + "/" + name
	f.versions[key]++
	f.checksums[key] = fmt.Sprintf("cs-%s-%d", name, f.versions[key])
	return fmt.Sprintf("%d", f.versions[key])
}

func (f *fakeLex) GetSlotType(_ context.Context, in *lex.GetSlotTypeInput, _ ...func(*lex.Options)) (*lex.GetSlotTypeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cs, err := f.get("SlotType", aws.ToString(in.Name))
	if err != nil {
		return nil, err
	}
	return &lex.GetSlotTypeOutput{Name: in.Name, Checksum: cs}, nil
}

func (f *fakeLex) PutSlotType(_ context.Context, in *lex.PutSlotTypeInput, _ ...func(*lex.Options)) (*lex.PutSlotTypeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slotTypeInputs = append(f.slotTypeInputs, in)
	v := f.put("SlotType", aws.ToString(in.Name))
	return &lex.PutSlotTypeOutput{Name: in.Name, Version: aws.String(v)}, nil
}

func (f *fakeLex) GetIntent(_ context.Context, in *lex.GetIntentInput, _ ...func(*lex.Options)) (*lex.GetIntentOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cs, err := f.get("Intent", aws.ToString(in.Name))
	if err != nil {
		return nil, err
	}
	return &lex.GetIntentOutput{Name: in.Name, Checksum: cs}, nil
}

func (f *fakeLex) PutIntent(_ context.Context, in *lex.PutIntentInput, _ ...func(*lex.Options)) (*lex.PutIntentOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intentInputs = append(f.intentInputs, in)
	v := f.put("Intent", aws.ToString(in.Name))
	return &lex.PutIntentOutput{Name: in.Name, Version: aws.String(v)}, nil
}

func (f *fakeLex) GetBot(_ context.Context, in *lex.GetBotInput, _ ...func(*lex.Options)) (*lex.GetBotOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cs, err := f.get("Bot", aws.ToString(in.Name))
	if err != nil {
		return nil, err
	}
	return &lex.GetBotOutput{
		Name:          in.Name,
		Checksum:      cs,
		Status:        f.botStatus,
		FailureReason: aws.String(f.failureReason),
	}, nil
}

func (f *fakeLex) PutBot(_ context.Context, in *lex.PutBotInput, _ ...func(*lex.Options)) (*lex.PutBotOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.botInputs = append(f.botInputs, in)
	v := f.put("Bot", aws.ToString(in.Name))
	return &lex.PutBotOutput{Name: in.Name, Version: aws.String(v), Status: lextypes.StatusBuilding}, nil
}

func (f *fakeLex) GetBotAlias(_ context.Context, in *lex.GetBotAliasInput, _ ...func(*lex.Options)) (*lex.GetBotAliasOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cs, err := f.get("BotAlias", aws.ToString(in.Name))
	if err != nil {
		return nil, err
	}
	return &lex.GetBotAliasOutput{Name: in.Name, Checksum: cs}, nil
}

func (f *fakeLex) PutBotAlias(_ context.Context, in *lex.PutBotAliasInput, _ ...func(*lex.Options)) (*lex.PutBotAliasOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aliasInputs = append(f.aliasInputs, in)
	f.put("BotAlias", aws.ToString(in.Name))
	return &lex.PutBotAliasOutput{Name: in.Name}, nil
}

func (f *fakeLex) GetBotAliases(_ context.Context, in *lex.GetBotAliasesInput, _ ...func(*lex.Options)) (*lex.GetBotAliasesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetBotAliases")
	if f.listAliasesErr != nil {
		return nil, f.listAliasesErr
	}
	page := 0
	if in.NextToken != nil {
		fmt.Sscanf(*in.NextToken, "page-%d", &page)
	}
	out := &lex.GetBotAliasesOutput{}
	if page < len(f.aliasPages) {
		for _, name := range f.aliasPages[page] {
			out.BotAliases = append(out.BotAliases, lextypes.BotAliasMetadata{Name: aws.String(name), BotName: in.BotName})
		}
	}
	if page+1 < len(f.aliasPages) {
		out.NextToken = aws.String(fmt.Sprintf("page-%d", page+1))
	}
	return out, nil
}

func (f *fakeLex) DeleteBotAlias(_ context.Context, in *lex.DeleteBotAliasInput, _ ...func(*lex.Options)) (*lex.DeleteBotAliasOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := aws.ToString(in.Name)
	f.record("DeleteBotAlias:" + name)
	if errs := f.deleteAliasErr[name]; len(errs) > 0 {
		f.deleteAliasErr[name] = errs[1:]
		return nil, errs[0]
	}
	return &lex.DeleteBotAliasOutput{}, nil
}

func (f *fakeLex) DeleteBot(_ context.Context, in *lex.DeleteBotInput, _ ...func(*lex.Options)) (*lex.DeleteBotOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteBot:" + aws.ToString(in.Name))
	if len(f.deleteBotErr) > 0 {
		err := f.deleteBotErr[0]
		f.deleteBotErr = f.deleteBotErr[1:]
		return nil, err
	}
	return &lex.DeleteBotOutput{}, nil
}

// fakeObjects serves bot definitions by bucket/key.
type fakeObjects struct {
	objects map[string][]byte
	reads   int
}

func (f *fakeObjects) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	f.reads++
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("s3://%s/%s: %w", bucket, key, s3.ErrObjectNotFound)
	}
	return data, nil
}
