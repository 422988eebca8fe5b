//go:build e2e

package e2e

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInstance(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "instance.txt")
	require.NoError(t, os.WriteFile(path, []byte("10\n1 2\n3 4\n5 6\n"), 0644))
	return path
}

func TestCLI_Usage(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "run", "instance.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage: knapsack run")
	assert.NoFileExists(t, filepath.Join(dir, "output.txt"))
}

func TestCLI_RunWritesDefaultLog(t *testing.T) {
	dir := t.TempDir()
	writeInstance(t, dir)

	out, err := runCLI(t, dir, "run", "instance.txt", "30", "10", "0.1", "0.7", "0.05", "--seed", "3")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Best total value:")

	data, err := os.ReadFile(filepath.Join(dir, "output.txt"))
	require.NoError(t, err)
	assert.Len(t, strings.Fields(string(data)), 31)
}

func TestCLI_MalformedInputFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.txt"), []byte("ten\n"), 0644))

	out, err := runCLI(t, dir, "run", "bad.txt", "30", "10", "0.1", "0.7", "0.05")
	assert.Error(t, err)
	assert.Contains(t, out, "capacity")
	assert.NoFileExists(t, filepath.Join(dir, "output.txt"))
}

func TestCLI_S3ArtifactsAndLedger(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeInstance(t, dir)

	ledger := "s3://" + bucket + "/ledger/runs.jsonl"
	out, err := runCLI(t, dir, "run", "instance.txt", "20", "10", "0.1", "0.7", "0.05",
		"--export", "result.json",
		"--output-dir", "s3://"+bucket+"/artifacts",
		"--ledger", ledger,
	)
	require.NoError(t, err, out)

	listed, err := s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String("artifacts/"),
	})
	require.NoError(t, err)

	var keys []string
	for _, obj := range listed.Contents {
		keys = append(keys, aws.ToString(obj.Key))
	}
	assert.ElementsMatch(t, []string{"artifacts/output.txt", "artifacts/result.json"}, keys)

	out, err = runCLI(t, dir, "history", "--ledger", ledger)
	require.NoError(t, err, out)
	assert.Contains(t, out, "instance.txt")
}
