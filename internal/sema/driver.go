package sema

import (
	"gscript/internal/ast"
	"gscript/internal/diag"
	"gscript/internal/ident"
	"gscript/internal/symbols"
	"gscript/internal/types"
)

// Analyze implements §4.8's driver contract for one translation unit:
// bind every top-level declaration into the type registry and symbol
// table, then check every function body and top-level statement. The
// Checker must already be constructed over the unit's Tree (New).
func (c *Checker) Analyze() {
	fileScope := c.Symbols.NewScope(symbols.ScopeFile, symbols.NoScopeID, c.file, c.Tree.File.Span)
	globalScope := c.Symbols.NewScope(symbols.ScopeGlobal, fileScope, c.file, c.Tree.File.Span)

	root := &SemaContext{Scope: globalScope}
	c.pushContext(root)
	defer c.popContext()

	c.bindEnums(globalScope)
	c.bindEnumStructs()
	c.bindPStructs()
	c.bindFunctions(globalScope)
	c.bindMethodmaps(globalScope)

	for _, funcID := range c.Tree.File.Funcs {
		sym, ok := c.funcSymByDecl[funcID]
		if !ok {
			continue
		}
		c.AnalyzeFunc(funcID, sym)
	}

	for _, stmtID := range c.Tree.File.Globals {
		c.CheckStmt(stmtID)
	}

	c.checkUnusedInScope(globalScope)
	c.checkUnusedFunctions(globalScope)
	c.checkEntryPoint()

	if c.pendingHeap {
		panic("sema: heap-ownership pending bit left set after analysis")
	}
}

func (c *Checker) bindEnums(scope symbols.ScopeID) {
	for _, e := range c.Tree.File.Enums {
		tag, err := c.Types.DefineEnum(e.Name)
		if err != nil {
			c.errorf(e.Span, diag.ErrDuplicateType, "%s", err.Error())
			continue
		}
		var next int32
		for _, f := range e.Fields {
			val := next
			if f.Value.IsValid() {
				if c.CheckExpr(f.Value) {
					if v, _, err := c.Folder.Eval(f.Value); err == nil {
						val = v
					}
				}
			}
			sym := symbols.Symbol{
				Name:     f.Name,
				Ident:    ident.Constant,
				Storage:  symbols.StorageEnumField,
				Tag:      tag,
				ConstVal: val,
				Span:     f.Span,
				File:     c.file,
			}
			sym.Flags |= symbols.FlagConst | symbols.FlagEnumField
			if _, err := c.Symbols.Add(scope, sym); err != nil {
				c.errorf(f.Span, diag.ErrDuplicateType, "%s", err.Error())
			}
			next = val + 1
		}
	}
}

func (c *Checker) bindEnumStructs() {
	for _, es := range c.Tree.File.EnumStructs {
		payload := &types.EnumStruct{}
		offset := 0
		for _, f := range es.Fields {
			tag, found := c.Types.Find(f.TagName)
			if !found {
				tag = c.Types.Builtin().Int
			}
			payload.Fields = append(payload.Fields, types.EnumStructField{
				Name:      c.name(f.Name),
				Tag:       tag,
				Offset:    offset,
				ArraySize: f.ArraySize,
			})
			if f.ArraySize > 0 {
				offset += f.ArraySize
			} else {
				offset++
			}
		}
		payload.SizeCells = offset
		if _, err := c.Types.DefineEnumStruct(es.Name, payload); err != nil {
			c.errorf(es.Span, diag.ErrDuplicateType, "%s", err.Error())
		}
	}
}

func (c *Checker) bindPStructs() {
	for _, ps := range c.Tree.File.PStructs {
		payload := &types.PseudoStruct{Name: ps.Name}
		for _, f := range ps.Fields {
			tag, found := c.Types.Find(f.TagName)
			if !found {
				tag = c.Types.Builtin().Int
			}
			payload.Fields = append(payload.Fields, types.PseudoStructField{
				Name:   c.name(f.Name),
				Tag:    tag,
				String: f.IsString,
			})
		}
		if _, err := c.Types.DefineStruct(ps.Name); err != nil {
			c.errorf(ps.Span, diag.ErrDuplicateType, "%s", err.Error())
		}
		c.pstructs[ps.Name] = payload
	}
}

func paramIdentFromKind(k ast.ParamKind) ident.Kind {
	switch k {
	case ast.ParamReference:
		return ident.Reference
	case ast.ParamArray:
		return ident.Array
	case ast.ParamRefArray:
		return ident.RefArray
	case ast.ParamVarArgs:
		return ident.VarArgs
	default:
		return ident.Variable
	}
}

func (c *Checker) bindFunctions(scope symbols.ScopeID) {
	for _, funcID := range c.Tree.File.Funcs {
		fn := c.Tree.Funcs.Get(funcID)
		if fn == nil {
			continue
		}
		retTag, found := c.Types.Find(fn.ReturnTagName)
		if !found {
			retTag = c.Types.Builtin().Int
		}

		paramIDs := make([]symbols.SymbolID, 0, len(fn.Params))
		defaults := make([]ast.ExprID, 0, len(fn.Params))
		for _, p := range fn.Params {
			ptag, found := c.Types.Find(p.TagName)
			if !found {
				ptag = c.Types.Builtin().Int
			}
			pdim := symbols.ArrayDim{}
			if len(p.Dims) > 0 {
				pdim.Level = int16(len(p.Dims))
				if outer := p.Dims[0]; outer.IsValid() {
					if v, _, err := c.Folder.Eval(outer); err == nil {
						pdim.Length = v
					}
				}
			}
			psym := symbols.Symbol{
				Name:    p.Name,
				Ident:   paramIdentFromKind(p.Kind),
				Storage: symbols.StorageArgument,
				Tag:     ptag,
				Dim:     pdim,
				Span:    p.Span,
				File:    c.file,
			}
			paramIDs = append(paramIDs, c.Symbols.NewDetachedSymbol(psym))
			defaults = append(defaults, p.Default)
		}

		funcSym := symbols.Symbol{
			Name:    fn.Name,
			Ident:   ident.Function,
			Storage: symbols.StorageGlobal,
			Tag:     retTag,
			Span:    fn.Span,
			File:    c.file,
		}
		if fn.IsNative {
			funcSym.Flags |= symbols.FlagNative
		}
		if fn.IsPublic {
			funcSym.Flags |= symbols.FlagPublic
		}
		if fn.IsStock {
			funcSym.Flags |= symbols.FlagStock
		}
		if fn.IsOperator {
			funcSym.Flags |= symbols.FlagOperator
		}
		if fn.Deprecated != "" {
			funcSym.Flags |= symbols.FlagDeprecated
			if !fn.IsStock {
				c.warnf(fn.Span, diag.WarnDeprecatedUse, "%s is declared deprecated but not stock", c.name(fn.Name))
			}
		}
		if fn.Body.IsValid() {
			funcSym.Flags |= symbols.FlagDefined
		}
		funcSym.Function = &symbols.FunctionData{
			Params:        paramIDs,
			Defaults:      defaults,
			ReturnTag:     retTag,
			ReturnIsArray: fn.ReturnIsArray,
			Deprecated:    fn.Deprecated,
			DeclFunc:      funcID,
		}
		if fn.ReturnIsArray {
			funcSym.Function.ArrayReturn = c.Symbols.NewDetachedSymbol(symbols.Symbol{
				Ident: ident.Array, Tag: retTag, Span: fn.Span, File: c.file,
			})
		}

		var symID symbols.SymbolID
		if existingID, ok := c.Symbols.FindLocal(scope, fn.Name); ok {
			existing := c.Symbols.Symbol(existingID)
			if existing.Function != nil && !existing.Flags.Has(symbols.FlagDefined) {
				funcSym.Function.Forward = existingID
				*existing = funcSym
				symID = existingID
			} else {
				c.errorf(fn.Span, diag.ErrDuplicateType, "%q is already declared", c.name(fn.Name))
				continue
			}
		} else {
			id, err := c.Symbols.Add(scope, funcSym)
			if err != nil {
				c.errorf(fn.Span, diag.ErrDuplicateType, "%s", err.Error())
				continue
			}
			symID = id
		}
		c.RegisterFunc(funcID, symID, c.Symbols.Symbol(symID))
	}
}

func (c *Checker) bindMethodmaps(scope symbols.ScopeID) {
	for _, md := range c.Tree.File.Methodmaps {
		var parent types.Tag = types.NoTag
		if md.Parent != "" {
			if t, found := c.Types.Find(md.Parent); found {
				parent = t
			}
		}
		payload := &types.Methodmap{
			Parent:   parent,
			Nullable: md.Nullable,
			Methods:  make(map[string]*types.MethodmapMethod),
		}
		getters := make(map[string]*types.MethodmapMethod)
		setters := make(map[string]*types.MethodmapMethod)

		for _, mdecl := range md.Methods {
			id, ok := c.funcSymID[mdecl.Func]
			if !ok {
				continue
			}
			symRef := id.Ref()
			fn := c.Tree.Funcs.Get(mdecl.Func)
			var name string
			switch {
			case mdecl.IsGetter, mdecl.IsSetter:
				name = c.name(mdecl.PropName)
			case fn != nil:
				name = c.name(fn.Name)
			}
			switch {
			case mdecl.IsCtor:
				payload.Constructor = symRef
				payload.NewOnly = parent != types.NoTag
			case mdecl.IsDtor:
				payload.Destructor = symRef
			case mdecl.IsGetter:
				m := &types.MethodmapMethod{Name: name, Symbol: symRef, Static: mdecl.Static, Accessor: types.AccessorGetter}
				payload.Methods[name] = m
				getters[name] = m
			case mdecl.IsSetter:
				m := &types.MethodmapMethod{Name: name, Symbol: symRef, Static: mdecl.Static, Accessor: types.AccessorSetter}
				payload.Methods[name] = m
				setters[name] = m
			default:
				payload.Methods[name] = &types.MethodmapMethod{Name: name, Symbol: symRef, Static: mdecl.Static}
			}
		}
		for name, g := range getters {
			if s, ok := setters[name]; ok {
				g.Paired = s.Symbol
				s.Paired = g.Symbol
			}
		}

		if _, err := c.Types.DefineMethodmap(md.Name, payload); err != nil {
			c.errorf(md.Span, diag.ErrDuplicateType, "%s", err.Error())
		}
	}
}

// Export is one public symbol a translation unit exposes to the rest of
// a project — the minimal surface the disk cache persists (§6).
type Export struct {
	Name string
	Tag  types.Tag
}

// Exports returns every public function this unit declares, for the
// driver's cache payload.
func (c *Checker) Exports() []Export {
	var out []Export
	for _, funcID := range c.Tree.File.Funcs {
		fn := c.Tree.Funcs.Get(funcID)
		sym := c.funcSymByDecl[funcID]
		if fn == nil || sym == nil || !fn.IsPublic {
			continue
		}
		out = append(out, Export{Name: c.name(fn.Name), Tag: sym.Tag})
	}
	return out
}

// checkEntryPoint implements §4.8's terminal check: a unit with no
// public function has nothing an outer host can ever invoke.
func (c *Checker) checkEntryPoint() {
	for _, funcID := range c.Tree.File.Funcs {
		if fn := c.Tree.Funcs.Get(funcID); fn != nil && fn.IsPublic {
			return
		}
	}
	c.errorf(c.Tree.File.Span, diag.ErrEntryPointMissing, "translation unit declares no public function")
}
