package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joseph-ayodele/docextract/constants"
)

const envelopedDump = `{
  "Blocks": [
    {
      "Id": "page-1",
      "BlockType": "PAGE",
      "Page": 1
    },
    {
      "Id": "kv-1",
      "BlockType": "KEY_VALUE_SET",
      "EntityTypes": ["KEY"],
      "Confidence": 91.5,
      "Relationships": [
        {"Type": "CHILD", "Ids": ["w-1"]},
        {"Type": "VALUE", "Ids": ["kv-2"]}
      ]
    },
    {
      "Id": "sig-1",
      "BlockType": "SIGNATURE",
      "Confidence": 88.0,
      "Geometry": {"BoundingBox": {"Left": 0.1, "Top": 0.2, "Width": 0.3, "Height": 0.05}}
    },
    {
      "Id": "cell-1",
      "BlockType": "CELL",
      "RowIndex": 2,
      "ColumnIndex": 3
    }
  ]
}`

func TestDecodeBlocksEnveloped(t *testing.T) {
	blocks, err := DecodeBlocks(strings.NewReader(envelopedDump))
	if err != nil {
		t.Fatalf("DecodeBlocks: %v", err)
	}
	if len(blocks) != 4 {
		t.Fatalf("got %d blocks, want 4", len(blocks))
	}

	kv := blocks[1]
	if kv.BlockType != constants.BlockTypeKeyValueSet {
		t.Errorf("block type = %q, want KEY_VALUE_SET", kv.BlockType)
	}
	if !kv.HasEntityType(constants.EntityTypeKey) {
		t.Error("expected KEY entity type")
	}
	if kv.Confidence != 91.5 {
		t.Errorf("confidence = %v, want 91.5", kv.Confidence)
	}
	if len(kv.Relationships) != 2 {
		t.Fatalf("got %d relationships, want 2", len(kv.Relationships))
	}
	if kv.Relationships[1].Type != constants.RelationshipValue || kv.Relationships[1].IDs[0] != "kv-2" {
		t.Errorf("unexpected VALUE relationship: %+v", kv.Relationships[1])
	}

	sig := blocks[2]
	if sig.BoundingBox == nil {
		t.Fatal("expected bounding box on signature block")
	}
	if sig.BoundingBox.Width != 0.3 {
		t.Errorf("bbox width = %v, want 0.3", sig.BoundingBox.Width)
	}

	cell := blocks[3]
	if cell.RowIndex != 2 || cell.ColumnIndex != 3 {
		t.Errorf("cell indices = (%d,%d), want (2,3)", cell.RowIndex, cell.ColumnIndex)
	}
}

func TestDecodeBlocksBareArray(t *testing.T) {
	blocks, err := DecodeBlocks(strings.NewReader(`[{"Id": "l-1", "BlockType": "LINE", "Text": "Invoice"}]`))
	if err != nil {
		t.Fatalf("DecodeBlocks: %v", err)
	}
	if len(blocks) != 1 || blocks[0].Text != "Invoice" {
		t.Fatalf("unexpected blocks: %+v", blocks)
	}
}

func TestDecodeBlocksRejectsGarbage(t *testing.T) {
	if _, err := DecodeBlocks(strings.NewReader(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestFileSourceFetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.json")
	if err := os.WriteFile(path, []byte(envelopedDump), 0o644); err != nil {
		t.Fatal(err)
	}

	blocks, err := FileSource{}.Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(blocks) != 4 {
		t.Fatalf("got %d blocks, want 4", len(blocks))
	}

	if _, err := (FileSource{}).Fetch(context.Background(), filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
