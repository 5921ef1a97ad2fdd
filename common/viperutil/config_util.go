/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package viperutil

import (
	"encoding"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperledger/fabric-sbt/common/flogging"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var logger = flogging.MustGetLogger("viperutil")

// ConfigPathEnv names the directory searched first for configuration files.
const ConfigPathEnv = "SBT_CFG_PATH"

// ConfigPaths returns the paths from environment and
// defaults which are CWD and /etc/hyperledger/sbt.
func ConfigPaths() []string {
	var paths []string
	if p := os.Getenv(ConfigPathEnv); p != "" {
		paths = append(paths, p)
	}
	return append(paths, ".", "/etc/hyperledger/sbt")
}

type viperGetter func(key string) interface{}

func getKeysRecursively(base string, getKey viperGetter, nodeKeys map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for key := range nodeKeys {
		fqKey := base + key
		val := getKey(fqKey)
		if m, ok := val.(map[interface{}]interface{}); ok {
			logger.Debugf("Found map[interface{}]interface{} value for %s", fqKey)
			result[key] = getKeysRecursively(fqKey+".", getKey, toMapStringInterface(m))
		} else if m, ok := val.(map[string]interface{}); ok {
			logger.Debugf("Found map[string]interface{} value for %s", fqKey)
			result[key] = getKeysRecursively(fqKey+".", getKey, m)
		} else if m, ok := unmarshalJSON(val); ok {
			logger.Debugf("Found real value for %s setting to map[string]string %v", fqKey, m)
			result[key] = m
		} else {
			if val == nil {
				fileSubKey := fqKey + ".File"
				fileVal := getKey(fileSubKey)
				if fileVal != nil {
					result[key] = map[string]interface{}{"File": fileVal}
					continue
				}
			}
			logger.Debugf("Found real value for %s setting to %T %v", fqKey, val, val)
			result[key] = val
		}
	}
	return result
}

func toMapStringInterface(m map[interface{}]interface{}) map[string]interface{} {
	result := map[string]interface{}{}
	for k, v := range m {
		k, ok := k.(string)
		if !ok {
			panic(fmt.Sprintf("Non string %v, %v: key-entry: %v", k, v, k))
		}
		result[k] = v
	}
	return result
}

func unmarshalJSON(val interface{}) (map[string]string, bool) {
	mp := map[string]string{}
	s, ok := val.(string)
	if !ok {
		logger.Debugf("Unmarshal JSON: value is not a string: %v", val)
		return nil, false
	}
	err := json.Unmarshal([]byte(s), &mp)
	if err != nil {
		logger.Debugf("Unmarshal JSON: value cannot be unmarshalled: %s", err)
		return nil, false
	}
	return mp, true
}

// customDecodeHook parses strings of the format "[thing1, thing2, thing3]"
// into string slices. Note that whitespace around slice elements is removed.
func customDecodeHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}

	raw := data.(string)
	l := len(raw)
	if l > 1 && raw[0] == '[' && raw[l-1] == ']' {
		slice := strings.Split(raw[1:l-1], ",")
		for i, v := range slice {
			slice[i] = strings.TrimSpace(v)
		}
		return slice, nil
	}

	return data, nil
}

var byteSizeRegexp = regexp.MustCompile(`^(?P<size>[0-9]+)\s*(?i)(?P<unit>(k|m|g))b?$`)

func byteSizeDecodeHook(f reflect.Kind, t reflect.Kind, data interface{}) (interface{}, error) {
	if f != reflect.String || t != reflect.Uint32 {
		return data, nil
	}
	raw := data.(string)
	if raw == "" {
		return data, nil
	}
	if byteSizeRegexp.MatchString(raw) {
		size, err := strconv.ParseUint(byteSizeRegexp.ReplaceAllString(raw, "${size}"), 0, 64)
		if err != nil {
			return data, nil
		}
		unit := byteSizeRegexp.ReplaceAllString(raw, "${unit}")
		switch strings.ToLower(unit) {
		case "g":
			size = size << 10
			fallthrough
		case "m":
			size = size << 10
			fallthrough
		case "k":
			size = size << 10
		}
		if size > math.MaxUint32 {
			return size, fmt.Errorf("value '%s' overflows uint32", raw)
		}
		return size, nil
	}
	return data, nil
}

func fileName(data interface{}) (string, bool, error) {
	var fileI interface{}
	var ok bool
	switch d := data.(type) {
	case map[string]string:
		fileI, ok = d["File"]
		if !ok {
			fileI, ok = d["file"]
		}
	case map[string]interface{}:
		fileI, ok = d["File"]
		if !ok {
			fileI, ok = d["file"]
		}
	}
	if !ok {
		return "", false, nil
	}
	name, _ := fileI.(string)
	if name == "" {
		return "", true, fmt.Errorf("Value of File: was nil")
	}
	return name, true, nil
}

func stringFromFileDecodeHook(f reflect.Kind, t reflect.Kind, data interface{}) (interface{}, error) {
	if t != reflect.String || f != reflect.Map {
		return data, nil
	}
	name, ok, err := fileName(data)
	switch {
	case err != nil:
		return nil, err
	case !ok:
		return data, nil
	}
	bytes, err := os.ReadFile(name)
	if err != nil {
		return data, err
	}
	return string(bytes), nil
}

func pemBlocksFromFileDecodeHook(f reflect.Kind, t reflect.Kind, data interface{}) (interface{}, error) {
	if t != reflect.Slice || f != reflect.Map {
		return data, nil
	}
	name, ok, err := fileName(data)
	switch {
	case err != nil:
		return nil, err
	case !ok:
		return data, nil
	}
	bytes, err := os.ReadFile(name)
	if err != nil {
		return data, err
	}
	var result []string
	for len(bytes) > 0 {
		var block *pem.Block
		block, bytes = pem.Decode(bytes)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" || len(block.Headers) != 0 {
			continue
		}
		result = append(result, string(pem.EncodeToMemory(block)))
	}
	return result, nil
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// textUnmarshalerHook decodes scalars into types implementing
// encoding.TextUnmarshaler, such as amounts and mint policies.
func textUnmarshalerHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if !reflect.PtrTo(t).Implements(textUnmarshalerType) {
		return data, nil
	}
	var text string
	switch f.Kind() {
	case reflect.String:
		text = data.(string)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		text = fmt.Sprintf("%d", data)
	case reflect.Float32, reflect.Float64:
		text = strconv.FormatFloat(reflect.ValueOf(data).Float(), 'f', -1, 64)
	default:
		return data, nil
	}
	result := reflect.New(t)
	if err := result.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", t)
	}
	return result.Elem().Interface(), nil
}

// DecodeHook is the mapstructure hook chain applied by EnhancedExactUnmarshal.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		textUnmarshalerHook,
		mapstructure.StringToTimeDurationHookFunc(),
		customDecodeHook,
		byteSizeDecodeHook,
		stringFromFileDecodeHook,
		pemBlocksFromFileDecodeHook,
	)
}

// EnhancedExactUnmarshal is intended to unmarshal a config file into a structure
// producing error when extraneous variables are introduced and supporting
// the time.Duration type
func EnhancedExactUnmarshal(v *viper.Viper, output interface{}) error {
	oType := reflect.TypeOf(output)
	if oType == nil || oType.Kind() != reflect.Ptr || oType.Elem().Kind() != reflect.Struct {
		return errors.Errorf("supplied output argument must be a pointer to a struct")
	}

	// AllKeys doesn't actually return all keys, it only returns the base ones
	baseKeys := v.AllSettings()
	getterWithClass := func(key string) interface{} { return v.Get(key) } // hide receiver
	leafKeys := getKeysRecursively("", getterWithClass, baseKeys)

	logger.Debugf("%+v", leafKeys)
	config := &mapstructure.DecoderConfig{
		ErrorUnused:      true,
		Metadata:         nil,
		Result:           output,
		WeaklyTypedInput: true,
		DecodeHook:       DecodeHook(),
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return err
	}
	return decoder.Decode(leafKeys)
}
