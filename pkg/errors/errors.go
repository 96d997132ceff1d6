// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 前処理パイプラインの各段階で発生するエラーを、種別(設定・入出力・データ)付きの
// 構造化されたエラーとして扱います。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("examprep-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler は警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// UnknownCategoryWarning は学習時に観測されなかったカテゴリが変換時に現れた場合の警告です。
// 該当セルは全てゼロのインジケータとして符号化されます。
type UnknownCategoryWarning struct {
	Column string
	Values []string
}

func (w *UnknownCategoryWarning) Error() string {
	return fmt.Sprintf("found unknown categories %q in column '%s' during transform; they are encoded as all zeros", w.Values, w.Column)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UnknownCategoryWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("column", w.Column).
		Strs("values", w.Values).
		Str("type", "UnknownCategoryWarning")
}

// NewUnknownCategoryWarning は新しいUnknownCategoryWarningを作成します。
func NewUnknownCategoryWarning(column string, values []string) *UnknownCategoryWarning {
	return &UnknownCategoryWarning{Column: column, Values: values}
}

// ===========================================================================
//
//	推定器の誤用に関するエラー型
//
// ===========================================================================

// NotFittedError は未学習の状態で `Transform` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("examprep: %s: this transformer is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("examprep: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("examprep: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	パイプラインのエラー種別
//
// ===========================================================================

// Kind はパイプラインエラーの種別です。
type Kind string

const (
	// KindConfiguration は宣言された列が入力に存在しない等、設定と入力の不整合です。
	KindConfiguration Kind = "configuration"
	// KindIO はテーブルの読み込みや前処理オブジェクトの保存の失敗です。
	KindIO Kind = "io"
	// KindData は解析できないセル値など、データ自体の不正です。
	KindData Kind = "data"
	// KindInternal は回復されたpanicなど、上記に分類できない失敗です。
	KindInternal Kind = "internal"
)

// PipelineError は種別付きのエラーです。Op は発生箇所を示します。
type PipelineError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("examprep: %s: %s error: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("examprep: %s: %s error", e.Op, e.Kind)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *PipelineError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("kind", string(e.Kind)).
		Str("type", "PipelineError")
	if e.Err != nil {
		event.Str("cause", e.Err.Error())
	}
}

func newPipelineError(kind Kind, op string, err error) error {
	return errors.WithStackDepth(&PipelineError{Kind: kind, Op: op, Err: err}, 2)
}

// NewConfigurationError は新しい設定エラーを作成し、スタックトレースを付与します。
func NewConfigurationError(op string, err error) error {
	return newPipelineError(KindConfiguration, op, err)
}

// NewIOError は新しい入出力エラーを作成し、スタックトレースを付与します。
func NewIOError(op string, err error) error {
	return newPipelineError(KindIO, op, err)
}

// NewDataError は新しいデータエラーを作成し、スタックトレースを付与します。
func NewDataError(op string, err error) error {
	return newPipelineError(KindData, op, err)
}

// OperationError は公開操作の境界で返される唯一のエラー型です。
// 原因(Err)と呼び出し時のコンテキストを保持し、種別は原因から引き継ぎます。
type OperationError struct {
	Kind    Kind
	Op      string
	Err     error
	Context map[string]interface{}
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("examprep: %s failed: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *OperationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("kind", string(e.Kind)).
		Str("cause", e.Err.Error()).
		Fields(e.Context).
		Str("type", "OperationError")
}

// WrapOperation は操作境界でエラーをOperationErrorに包みます。
// kv はキーと値の組で、コンテキストとして保持されます。err が nil の場合は nil を返します。
// 既にOperationErrorであればコンテキストを追加するだけで二重には包みません。
//
// 例:
//
//	return nil, errors.WrapOperation("DataTransformation.Transform", err,
//	    "train_path", trainPath)
func WrapOperation(op string, err error, kv ...interface{}) error {
	if err == nil {
		return nil
	}
	ctx := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		ctx[fmt.Sprint(kv[i])] = kv[i+1]
	}

	var opErr *OperationError
	if errors.As(err, &opErr) {
		for k, v := range ctx {
			if _, exists := opErr.Context[k]; !exists {
				opErr.Context[k] = v
			}
		}
		return err
	}

	return errors.WithStackDepth(&OperationError{
		Kind:    KindOf(err),
		Op:      op,
		Err:     err,
		Context: ctx,
	}, 1)
}

// KindOf はエラーチェーンから最初に見つかった種別を返します。
// 種別を持たないエラーは KindInternal として扱います。
func KindOf(err error) Kind {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	var pErr *PipelineError
	if errors.As(err, &pErr) {
		return pErr.Kind
	}
	var dimErr *DimensionError
	if errors.As(err, &dimErr) {
		return KindData
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return KindConfiguration
	}
	return KindInternal
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrMissingColumn は宣言された列が入力に存在しない場合のエラーです。
	ErrMissingColumn = New("missing column")
)
