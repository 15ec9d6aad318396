package dotnet

import "fmt"

// Token identifies a row in one of a module's metadata tables.
// The high byte selects the table, the low 24 bits are the row id.
type Token uint32

// Table identifies a metadata table.
type Table uint8

const (
	TableModule     Table = 0x00
	TableTypeRef    Table = 0x01
	TableTypeDef    Table = 0x02
	TableField      Table = 0x04
	TableMethod     Table = 0x06
	TableMemberRef  Table = 0x0A
	TableTypeSpec   Table = 0x1B
	TableUserString Table = 0x70
)

func (t Table) String() string {
	switch t {
	case TableModule:
		return "Module"
	case TableTypeRef:
		return "TypeRef"
	case TableTypeDef:
		return "TypeDef"
	case TableField:
		return "Field"
	case TableMethod:
		return "Method"
	case TableMemberRef:
		return "MemberRef"
	case TableTypeSpec:
		return "TypeSpec"
	case TableUserString:
		return "UserString"
	default:
		return fmt.Sprintf("Table(0x%02X)", uint8(t))
	}
}

// NewToken builds a token from a table and row id.
func NewToken(table Table, rid uint32) Token {
	return Token(uint32(table)<<24 | rid&0x00FFFFFF)
}

// Table returns the table the token points into.
func (t Token) Table() Table { return Table(t >> 24) }

// RID returns the row id.
func (t Token) RID() uint32 { return uint32(t) & 0x00FFFFFF }

func (t Token) String() string {
	return fmt.Sprintf("0x%08X", uint32(t))
}
