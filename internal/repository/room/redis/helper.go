package redis

import (
	"context"
	"reflect"

	"github.com/redis/go-redis/v9"
)

func (r repo) addWithNextOrder(ctx context.Context, c redis.Scripter, key, member string) {
	c.EvalSha(ctx, r.nextOrderScript, []string{key}, member)
}

// hSetStruct writes the struct's fields into a hash using `redis` tags as
// field names. Nil pointer fields are skipped so partial updates don't
// clobber absent values.
func (r repo) hSetStruct(ctx context.Context, c redis.Cmdable, key string, value any) error {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	fields := make(map[string]any)
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		tag := t.Field(i).Tag.Get("redis")
		if tag == "" {
			tag = t.Field(i).Name
		}

		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				continue
			}
			fields[tag] = field.Elem().Interface()
			continue
		}

		fields[tag] = field.Interface()
	}

	return c.HSet(ctx, key, fields).Err()
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}
