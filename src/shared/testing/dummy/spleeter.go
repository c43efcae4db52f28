package dummy

import (
	"fmt"
	"github.com/cockroachdb/errors"
	"github.com/veedubyou/spleeter-api/src/shared/lib/executor"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var _ executor.Executor = &SpleeterExecutor{}

var modelStems = map[string][]string{
	"spleeter:2stems": {"vocals", "accompaniment"},
	"spleeter:4stems": {"vocals", "drums", "bass", "other"},
	"spleeter:5stems": {"vocals", "drums", "bass", "piano", "other"},
}

// SpleeterExecutor stands in for the spleeter CLI. Each stem file it writes
// holds the input file's content followed by "-<stem name>".
type SpleeterExecutor struct {
	MissingBinary bool
	Fail          bool
	SkipOutput    bool

	lock     sync.Mutex
	commands [][]string
}

func NewDummySpleeterExecutor() *SpleeterExecutor {
	return &SpleeterExecutor{}
}

func (s *SpleeterExecutor) LookPath(file string) (string, error) {
	if s.MissingBinary {
		return "", errors.Newf("executable file not found: %s", file)
	}

	return file, nil
}

func (s *SpleeterExecutor) Command(name string, args ...string) executor.Cmd {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.commands = append(s.commands, append([]string{name}, args...))

	return &spleeterCmd{
		executor: s,
		args:     args,
	}
}

func (s *SpleeterExecutor) Commands() [][]string {
	s.lock.Lock()
	defer s.lock.Unlock()

	return append([][]string(nil), s.commands...)
}

func StemContent(inputContent []byte, stemName string) []byte {
	return append(append([]byte(nil), inputContent...), []byte("-"+stemName)...)
}

type spleeterCmd struct {
	executor *SpleeterExecutor
	args     []string
	dir      string
}

func (c *spleeterCmd) SetDir(dir string) {
	c.dir = dir
}

func (c *spleeterCmd) CombinedOutput() ([]byte, error) {
	if c.executor.Fail {
		return []byte("spleeter exploded"), errors.New("exit status 1")
	}

	if len(c.args) == 0 || c.args[0] != "separate" {
		return nil, errors.Newf("unexpected spleeter command: %v", c.args)
	}

	flags := map[string]string{}
	var inputPath string
	for i := 1; i < len(c.args); i++ {
		arg := c.args[i]
		if strings.HasPrefix(arg, "-") && i+1 < len(c.args) {
			flags[arg] = c.args[i+1]
			i++
			continue
		}

		inputPath = arg
	}

	stems, ok := modelStems[flags["-p"]]
	if !ok {
		return nil, errors.Newf("unknown model: %s", flags["-p"])
	}

	if c.executor.SkipOutput {
		return []byte("nothing to do"), nil
	}

	inputContent, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read input file")
	}

	outputDir := flags["-o"]
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(c.dir, outputDir)
	}

	codec := flags["-c"]
	for _, stem := range stems {
		relPath := strings.NewReplacer("{instrument}", stem, "{codec}", codec).Replace(flags["-f"])
		stemPath := filepath.Join(outputDir, relPath)

		if err := os.MkdirAll(filepath.Dir(stemPath), os.ModePerm); err != nil {
			return nil, errors.Wrap(err, "Failed to create stem dir")
		}

		if err := os.WriteFile(stemPath, StemContent(inputContent, stem), 0o644); err != nil {
			return nil, errors.Wrap(err, "Failed to write stem file")
		}
	}

	return []byte(fmt.Sprintf("separated %d stems", len(stems))), nil
}
